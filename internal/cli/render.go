package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/azaliaz/bookshop/internal/domain/models"
)

var (
	accent = lipgloss.Color("#8BC34A")
	danger = lipgloss.Color("#E53935")
	muted  = lipgloss.Color("#9E9E9E")

	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(accent)
	mutedStyle  = lipgloss.NewStyle().Foreground(muted)
	okStyle     = lipgloss.NewStyle().Foreground(accent)
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(danger).
			Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(muted)
)

// Banner renders err the way every failed command ends.
func Banner(err error) string {
	return bannerStyle.Render("Error: " + err.Error())
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...)
}

func price(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

func writeTitle(w io.Writer, title string) {
	fmt.Fprintln(w, titleStyle.Render(title))
}

func writeBooks(w io.Writer, title string, books []models.Book) {
	writeTitle(w, title)
	if len(books) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no books found"))
		return
	}
	t := newTable("ID", "Title", "Author", "Price", "Rating", "Genre")
	for _, b := range books {
		t.Row(strconv.Itoa(b.ID), b.Title, b.Author, price(b.Price),
			strconv.FormatFloat(b.Rating, 'f', 1, 64), strings.Join(b.Genre, ", "))
	}
	fmt.Fprintln(w, t.String())
}

func writeBook(w io.Writer, b models.Book) {
	writeTitle(w, b.Title)
	stock := "in stock"
	if !b.InStock {
		stock = "out of stock"
	}
	rows := [][2]string{
		{"Author", b.Author},
		{"Price", price(b.Price)},
		{"Rating", strconv.FormatFloat(b.Rating, 'f', 1, 64)},
		{"Genre", strings.Join(b.Genre, ", ")},
		{"Published", b.PublishDate.Format("January 2, 2006")},
		{"ISBN", b.ISBN},
		{"Availability", stock},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(fmt.Sprintf("%-13s", r[0])), r[1])
	}
	if b.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, lipgloss.NewStyle().Width(72).Render(b.Description))
	}
}

func writeReviews(w io.Writer, reviews []models.Review) {
	writeTitle(w, fmt.Sprintf("Reviews (%d)", len(reviews)))
	if len(reviews) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no reviews yet"))
		return
	}
	t := newTable("ID", "Book", "Author", "Rating", "Date", "Comment")
	for _, r := range reviews {
		t.Row(strconv.Itoa(r.ID), strconv.Itoa(r.BookID), r.UserName, stars(r.Rating),
			r.CreatedAt.Format("2006-01-02"), r.Comment)
	}
	fmt.Fprintln(w, t.String())
}

func writeCart(w io.Writer, items []models.CartItem, count int, total float64) {
	writeTitle(w, "Cart")
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("your cart is empty"))
		return
	}
	t := newTable("ID", "Title", "Price", "Qty", "Subtotal")
	for _, it := range items {
		t.Row(strconv.Itoa(it.Book.ID), it.Book.Title, price(it.Book.Price),
			strconv.Itoa(it.Quantity), price(it.Book.Price*float64(it.Quantity)))
	}
	fmt.Fprintln(w, t.String())
	fmt.Fprintf(w, "%d item(s), total %s\n", count, titleStyle.Render(price(total)))
}

func writeUser(w io.Writer, u models.User) {
	writeTitle(w, u.FullName())
	rows := [][2]string{
		{"ID", strconv.Itoa(u.ID)},
		{"Email", u.Email},
		{"Country", u.Country},
		{"City", u.City},
	}
	if u.Age > 0 {
		rows = append(rows, [2]string{"Age", strconv.Itoa(u.Age)})
	}
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		fmt.Fprintf(w, "%s %s\n", mutedStyle.Render(fmt.Sprintf("%-8s", r[0])), r[1])
	}
}

func writeOK(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, okStyle.Render(fmt.Sprintf(format, args...)))
}
