package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arampall/finance-tracker/internal/models"
)

func renderTransactions(w io.Writer, txs []models.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "No transactions found.")
		return
	}

	rows := make([][]string, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, []string{
			strconv.Itoa(tx.ID),
			tx.TransactionDate.Date(),
			string(tx.Type),
			tx.SignedAmount(),
			tx.CategoryLabel(),
			tx.DescriptionText(),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "DATE", "TYPE", "AMOUNT", "CATEGORY", "DESCRIPTION").
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

func renderTransaction(w io.Writer, tx models.Transaction) {
	fmt.Fprintf(w, "ID:          %d\n", tx.ID)
	fmt.Fprintf(w, "Date:        %s\n", tx.TransactionDate.Date())
	fmt.Fprintf(w, "Type:        %s\n", tx.Type)
	fmt.Fprintf(w, "Amount:      %s\n", models.FormatAmount(tx.Amount))
	fmt.Fprintf(w, "Category:    %s\n", tx.CategoryLabel())
	fmt.Fprintf(w, "Description: %s\n", tx.DescriptionText())
	if !tx.CreatedAt.IsZero() {
		fmt.Fprintf(w, "Created:     %s\n", tx.CreatedAt.String())
	}
	if !tx.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "Updated:     %s\n", tx.UpdatedAt.String())
	}
}
