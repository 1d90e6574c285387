package client

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/NikhilYadav04/pillbin-v2/internal/models"
)

// Prompter asks for medicine fields line by line.
type Prompter struct {
	In  *bufio.Scanner
	Out io.Writer
}

// NewPrompter reads answers from in and writes questions to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{In: bufio.NewScanner(in), Out: out}
}

func (p *Prompter) ask(question string) string {
	fmt.Fprint(p.Out, question)
	if !p.In.Scan() {
		return ""
	}
	return strings.TrimSpace(p.In.Text())
}

// Medicine prompts for the fields of a new medicine.
func (p *Prompter) Medicine() NewMedicineInput {
	return NewMedicineInput{
		Name:         p.ask("Name: "),
		ExpiryDate:   p.ask("Expiry date (YYYY-MM-DD): "),
		PurchaseDate: p.ask("Purchase date (optional): "),
		Dosage:       p.ask("Dosage (optional): "),
		Manufacturer: p.ask("Manufacturer (optional): "),
		Notes:        p.ask("Notes (optional): "),
	}
}

// PrintInventory renders the three status buckets and their counts.
func PrintInventory(w io.Writer, inv *models.Inventory) {
	buckets := []struct {
		title string
		meds  []models.Medicine
		total int
	}{
		{"Expired", inv.Expired, inv.Counts.Expired},
		{"Expiring soon", inv.ExpiringSoon, inv.Counts.ExpiringSoon},
		{"Active", inv.Active, inv.Counts.Active},
	}
	for _, b := range buckets {
		fmt.Fprintf(w, "%s (%d)\n", b.title, b.total)
		for _, m := range b.meds {
			fmt.Fprintf(w, "  %s  %-24s %s\n", m.ID, m.Name, m.ExpiryDate.Format("2006-01-02"))
		}
	}
	fmt.Fprintf(w, "Total: %d (page %d)\n", inv.Counts.Total, inv.Page.Page)
}

// PrintProfile renders counters and badges.
func PrintProfile(w io.Writer, u *models.User) {
	fmt.Fprintf(w, "%s <%s>\n", u.FullName, u.Email)
	fmt.Fprintf(w, "Tracking %d medicines, %d expiring soon, %d disposed\n",
		u.MedicineCount, u.Stats.ExpiringSoonCount, u.Stats.MedicinesDisposedCount)
	for _, b := range []struct {
		name  string
		badge models.Badge
	}{
		{"First Timer", u.Badges.FirstTimer},
		{"Eco Helper", u.Badges.EcoHelper},
		{"Green Champion", u.Badges.GreenChampion},
	} {
		if b.badge.Achieved {
			fmt.Fprintf(w, "  badge: %s\n", b.name)
		}
	}
}
