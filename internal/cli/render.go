package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/syncer"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	totalStyle  = lipgloss.NewStyle().Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(mutedStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

// RenderCart prints the cart state.
func RenderCart(w io.Writer, st syncer.State[domain.CartItem]) {
	if len(st.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Your cart is empty"))
	} else {
		t := newTable("ID", "Product", "Price", "Qty")
		for _, it := range st.Items {
			t.Row(strconv.Itoa(it.ProductID), it.Name, it.Price, strconv.Itoa(it.Quantity))
		}
		fmt.Fprintln(w, t.String())
		fmt.Fprintln(w, totalStyle.Render(fmt.Sprintf("%d item(s)", domain.ItemCount(st.Items))))
	}
	renderStatus(w, st.Loading, st.Error)
}

// RenderWishlist prints the wishlist state.
func RenderWishlist(w io.Writer, st syncer.State[domain.WishlistItem]) {
	if len(st.Items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Your wishlist is empty"))
	} else {
		t := newTable("ID", "Product", "Price")
		for _, it := range st.Items {
			t.Row(strconv.Itoa(it.ProductID), it.Name, it.Price)
		}
		fmt.Fprintln(w, t.String())
	}
	renderStatus(w, st.Loading, st.Error)
}

// RenderProducts prints one catalog page.
func RenderProducts(w io.Writer, page catalog.Page) {
	t := newTable("ID", "Product", "Category", "Price", "")
	for _, p := range page.Products {
		note := ""
		if p.Badge != nil {
			note = *p.Badge
		} else if p.Featured {
			note = "Featured"
		}
		t.Row(strconv.Itoa(p.ID), p.Name, p.Category, p.Price, note)
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("page %d of %d, %d products", page.Page, page.TotalPages, page.TotalItems)))
}

func renderStatus(w io.Writer, loading bool, errMsg string) {
	if errMsg != "" {
		fmt.Fprintln(w, errorStyle.Render(errMsg))
	}
	if loading {
		fmt.Fprintln(w, mutedStyle.Render("loading..."))
	}
}
