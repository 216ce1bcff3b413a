package gacha

// Wallet counts unopened packs.
type Wallet struct {
	packs int
}

// NewWallet returns a wallet holding n packs; negative n is treated as 0.
func NewWallet(n int) *Wallet {
	if n < 0 {
		n = 0
	}
	return &Wallet{packs: n}
}

// Packs returns the unopened pack count.
func (w *Wallet) Packs() int { return w.packs }

// AddPacks adds n packs. Non-positive n is ignored.
func (w *Wallet) AddPacks(n int) {
	if n > 0 {
		w.packs += n
	}
}

// Spend removes one pack.
//
// Postcondition: Returns ErrNoPacks and changes nothing when empty.
func (w *Wallet) Spend() error {
	if w.packs == 0 {
		return ErrNoPacks
	}
	w.packs--
	return nil
}
