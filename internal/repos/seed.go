package repos

import (
	"context"
	"log"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"bubblebliss/internal/money"
)

var (
	slugStrip = regexp.MustCompile(`[^a-z0-9\s-]`)
	slugSpace = regexp.MustCompile(`\s+`)
)

// Slug derives the catalog slug from a product name.
func Slug(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(name), "")
	return slugSpace.ReplaceAllString(strings.TrimSpace(s), "-")
}

type seedVariant struct {
	key, label string
	ghs        int64
}

type seedProduct struct {
	name, desc string
	ghs        int64 // 0 when variant priced
	variants   []seedVariant
}

type seedCategory struct {
	slug, name string
	products   []seedProduct
}

func ghs(n int64) money.Pesewas { return money.Pesewas(n * 100) }

var menu = []seedCategory{
	{"milk-tea", "Milk Tea", []seedProduct{
		{name: "Brown Sugar Milk", desc: "Rich brown sugar syrup swirled into creamy milk tea.", ghs: 40},
		{name: "Dalgona Coffee", desc: "Whipped coffee foam layered over smooth milk tea.", ghs: 40},
		{name: "Caramel Dream Milk", desc: "Silky milk tea with a warm caramel finish.", ghs: 40},
		{name: "Coconut Milk", desc: "Light and tropical milk tea with fresh coconut flavour.", ghs: 40},
		{name: "Original", desc: "The classic milk tea, clean and balanced.", ghs: 40},
		{name: "Terrific Taro", desc: "Creamy taro milk tea with an earthy, subtly sweet flavour.", ghs: 40},
		{name: "Matcha-Emerald", desc: "Earthy Japanese matcha blended into a creamy milk tea.", ghs: 40},
		{name: "Mango Magic", desc: "Tropical mango milk tea that is sweet and refreshing.", ghs: 40},
		{name: "Lotus", desc: "Delicately floral lotus milk tea with a smooth, clean taste.", ghs: 50},
		{name: "Oreo", desc: "Cookies-and-cream milk tea loaded with Oreo flavour.", ghs: 50},
		{name: "Tiramisu", desc: "Coffee-soaked tiramisu flavour in a rich creamy milk tea.", ghs: 50},
	}},
	{"hq-special", "HQ Special", []seedProduct{
		{name: "Corny Boba-Popcorn", desc: "Buttery popcorn-inspired milk tea loaded with chewy boba.", ghs: 40},
		{name: "Cheesy Mango", desc: "Juicy mango base topped with a signature cheese foam.", ghs: 50},
		{name: "C3 Blaze - Chocolate Chip Cookie", desc: "Chocolate chip cookie milk tea with a bold, indulgent flavour.", ghs: 40},
		{name: "Pina Colada", desc: "Pineapple and coconut milk tea with a tropical resort feel.", ghs: 50},
		{name: "Cheesy Ube", desc: "Purple ube milk tea finished with a smooth, salty cheese foam.", ghs: 40},
	}},
	{"iced-tea", "Iced Tea", []seedProduct{
		{name: "Fizzy Lemonade", desc: "Sparkling lemonade iced tea with a bright citrus zing.", ghs: 40},
		{name: "Peach Perfect", desc: "Sweet peach iced tea that is smooth and refreshing.", ghs: 40},
		{name: "Spiced Chai", desc: "Warming chai spices over a chilled iced tea base.", ghs: 40},
	}},
	{"milkshakes", "Milkshakes", []seedProduct{
		{name: "Creamy Chai", desc: "Thick and spiced chai milkshake with a warm, creamy finish.", ghs: 55},
		{name: "Bubble Gum", desc: "Fun and sweet bubble gum milkshake with a pop of colour.", ghs: 55},
		{name: "Vanilla Shake", desc: "Classic thick vanilla milkshake, smooth and satisfying.", ghs: 55},
	}},
	{"shawarma", "Shawarma", []seedProduct{
		{name: "Chicken Shawarma", desc: "Tender grilled chicken wrapped in a soft flatbread.",
			variants: []seedVariant{{"medium", "Medium", 50}, {"large", "Large", 60}}},
		{name: "Beef Shawarma", desc: "Juicy seasoned beef in a soft wrap with crisp vegetables.",
			variants: []seedVariant{{"medium", "Medium", 55}, {"large", "Large", 65}}},
		{name: "Mixed Shawarma", desc: "Chicken and beef shawarma in one wrap.", ghs: 75},
		{name: "Cheese Chicken Shawarma", desc: "Grilled chicken shawarma with melted cheese.",
			variants: []seedVariant{{"medium", "Medium", 65}, {"large", "Large", 75}}},
		{name: "Cheese Beef Shawarma", desc: "Seasoned beef shawarma with a melted cheese layer.",
			variants: []seedVariant{{"medium", "Medium", 70}, {"large", "Large", 80}}},
		{name: "Cheese Mixed Shawarma", desc: "Mixed chicken and beef shawarma loaded with cheese.", ghs: 90},
	}},
}

var seedToppings = []struct {
	name string
	ghs  int64
}{
	{"Chocolate", 5}, {"Sweetened Choco", 5}, {"Vanilla", 5}, {"Cheese Foam", 7},
	{"Strawberry Popping", 6}, {"Blueberry Popping", 6}, {"Mint Popping", 6}, {"Whipped Cream", 6},
	{"Biscoff Spread", 8}, {"Caramel Syrup", 5}, {"Grape Popping", 6}, {"Strawberry Jam", 5},
	{"Extra Boba", 10}, {"Extra Cheese Foam", 10},
}

// Seed upserts the menu, the toppings and the bootstrap admin. Running it
// again refreshes prices and re-enables items but keeps the admin password.
func Seed(ctx context.Context, db *sqlx.DB, adminEmail, adminPassword string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), 12)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	ts := now()
	for ci, c := range menu {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories(slug, name, sort_order) VALUES (?, ?, ?)
			ON CONFLICT(slug) DO UPDATE SET name = excluded.name, sort_order = excluded.sort_order
		`, c.slug, c.name, ci+1); err != nil {
			return err
		}
		var catID int64
		if err := tx.GetContext(ctx, &catID, `SELECT id FROM categories WHERE slug = ?`, c.slug); err != nil {
			return err
		}

		for pi, p := range c.products {
			var price any
			if len(p.variants) == 0 {
				price = ghs(p.ghs)
			}
			slug := Slug(p.name)
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO products(slug, name, description, category_id, price_pesewas, sort_order, is_active, in_stock, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, 1, 1, ?, ?)
				ON CONFLICT(slug) DO UPDATE SET
				  name = excluded.name, description = excluded.description, category_id = excluded.category_id,
				  price_pesewas = excluded.price_pesewas, sort_order = excluded.sort_order,
				  is_active = 1, in_stock = 1, updated_at = excluded.updated_at
			`, slug, p.name, p.desc, catID, price, pi+1, ts, ts); err != nil {
				return err
			}
			if len(p.variants) == 0 {
				continue
			}
			var prodID int64
			if err := tx.GetContext(ctx, &prodID, `SELECT id FROM products WHERE slug = ?`, slug); err != nil {
				return err
			}
			for vi, v := range p.variants {
				if _, err := tx.ExecContext(ctx, `
					INSERT INTO product_variants(product_id, key, label, price_pesewas, sort_order)
					VALUES (?, ?, ?, ?, ?)
					ON CONFLICT(product_id, key) DO UPDATE SET label = excluded.label, price_pesewas = excluded.price_pesewas
				`, prodID, v.key, v.label, ghs(v.ghs), vi+1); err != nil {
					return err
				}
			}
		}
	}

	for i, t := range seedToppings {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO toppings(name, price_pesewas, is_active, in_stock, sort_order)
			VALUES (?, ?, 1, 1, ?)
			ON CONFLICT(name) DO UPDATE SET
			  price_pesewas = excluded.price_pesewas, is_active = 1, in_stock = 1, sort_order = excluded.sort_order
		`, t.name, ghs(t.ghs), i+1); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO admin_users(email, password_hash)
		SELECT ?, ?
		WHERE NOT EXISTS (SELECT 1 FROM admin_users WHERE LOWER(email) = LOWER(?))
	`, adminEmail, string(hash), adminEmail); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("[seed] menu loaded: %d categories, %d toppings, admin %s", len(menu), len(seedToppings), adminEmail)
	return nil
}
