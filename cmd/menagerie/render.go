package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/cory-johannsen/menagerie/internal/content"
	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/notify"
	"github.com/cory-johannsen/menagerie/internal/game/roster"
	"github.com/cory-johannsen/menagerie/internal/sim"
)

// shortID trims a uuid to its first group for display.
func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}

// writeRoster prints the party then the bench, one creature per row.
func writeRoster(w io.Writer, st *roster.State) error {
	worn := make(map[string]string, len(st.Equipped))
	for itemID, uid := range st.Equipped {
		worn[uid] = st.Items[itemID]
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SLOT\tID\tSPECIES\tELEMENT\tLVL\tXP\tHEALTH\tITEM\tPENDING")
	row := func(slot string, rec *creature.Record) {
		xp := "max"
		if rec.XPToNextLevel > 0 {
			xp = fmt.Sprintf("%d/%d", rec.CurrentXP, rec.XPToNextLevel)
		}
		pending := "-"
		if !rec.Pending.IsZero() {
			pending = fmt.Sprintf("+%dxp", rec.Pending.XP)
			if rec.Pending.NeedsHeal {
				pending += " heal"
			}
		}
		item := worn[rec.UniqueID]
		if item == "" {
			item = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%.0f/%.0f\t%s\t%s\n",
			slot, shortID(rec.UniqueID), rec.TemplateRef, rec.Element, rec.Level, xp,
			rec.CurrentHealth, rec.MaxHealth, item, pending)
	}
	for i, id := range st.Party {
		slot := fmt.Sprintf("party %d", i+1)
		if i == st.ActiveIndex {
			slot += "*"
		}
		row(slot, st.Creatures[id])
	}
	for _, id := range st.Bench {
		row("bench", st.Creatures[id])
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	spare := len(st.Items) - len(st.Equipped)
	_, err := fmt.Fprintf(w, "\n%d creatures, %d items (%d spare), %d unopened packs\n",
		len(st.Creatures), len(st.Items), spare, st.Packs)
	return err
}

func writeSummary(w io.Writer, s sim.Stats) {
	fmt.Fprintf(w, "ticks=%d defeated=%d captured=%d fainted=%d hub_returns=%d packs_opened=%d evolutions=%d pickups=%d\n",
		s.Ticks, s.Defeated, s.Captured, s.Fainted, s.HubReturns, s.PacksOpened, s.Evolutions, s.Pickups)
}

func writeCatalog(w io.Writer, b *content.Bundle) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATURE\tELEMENT\tHEALTH\tDAMAGE\tSPEED\tCAPTURE\tEVOLVES")
	for _, t := range b.Templates.All() {
		evolves := "-"
		if t.Evolution != nil {
			evolves = fmt.Sprintf("%s @%d", t.Evolution.Into, t.Evolution.Level)
		}
		fmt.Fprintf(tw, "%s\t%s\t%.0f\t%.0f\t%.1f\t%d\t%s\n",
			t.ID, t.Element, t.Base.MaxHealth, t.Base.AttackDamage, t.Base.Speed, t.CaptureChallenge, evolves)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "ITEM\tELEMENT\tHEALTH%\tDAMAGE%")
	for _, d := range b.Items.All() {
		fmt.Fprintf(tw, "%s\t%s\t%+.0f\t%+.0f\n", d.ID, d.Element, d.HealthModifierPercent, d.DamageModifierPercent)
	}
	return tw.Flush()
}

// formatNotification renders n for a terminal as "[color] message".
func formatNotification(n notify.Notification) string {
	if n.Color == notify.ColorNone {
		return n.Message
	}
	return fmt.Sprintf("[%s] %s", n.Color, n.Message)
}
