package cart

import (
	"context"

	"github.com/sellyourtackle/tackle-backend/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Store is the session-scoped key-value backing for carts. The cart logic
// never touches the web session directly so it can run against any store.
type Store interface {
	Load(ctx context.Context, sessionID string) (State, error)
	Save(ctx context.Context, sessionID string, state State) error
	Delete(ctx context.Context, sessionID string) error
}

// ProductLister resolves live product rows for the ids held in a cart.
type ProductLister interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

// Entry is one product line inside the session. Price and shipping are
// snapshotted at add-time; iteration re-joins the live product row.
type Entry struct {
	ProductID    uuid.UUID       `json:"product_id"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
}

// State is everything persisted for one session's cart.
type State map[string]Entry

// LineItem is an entry enriched with the live product row.
type LineItem struct {
	Product      models.Product  `json:"product"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	ShippingCost decimal.Decimal `json:"shipping_cost"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

// Cart wraps a session's state with the operations the storefront needs.
// Mutations are kept in memory until Save.
type Cart struct {
	sessionID string
	store     Store
	state     State
	dirty     bool
}

// Load fetches the session's cart, creating an empty one on first access.
func Load(ctx context.Context, store Store, sessionID string) (*Cart, error) {
	state, err := store.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		state = State{}
	}
	return &Cart{sessionID: sessionID, store: store, state: state}, nil
}

// Add puts a product in the cart with quantity 1, snapshotting its price and
// shipping cost. Adding a product already present increments its quantity.
func (c *Cart) Add(product *models.Product, price decimal.Decimal) {
	key := product.ID.String()
	if entry, ok := c.state[key]; ok {
		entry.Quantity++
		c.state[key] = entry
	} else {
		c.state[key] = Entry{
			ProductID:    product.ID,
			Price:        price,
			Quantity:     1,
			ShippingCost: product.Shipping,
		}
	}
	c.dirty = true
}

// Remove drops a product from the cart; removing an absent product is a no-op.
func (c *Cart) Remove(productID uuid.UUID) {
	key := productID.String()
	if _, ok := c.state[key]; ok {
		delete(c.state, key)
		c.dirty = true
	}
}

// Contains reports whether the product is already in the cart.
func (c *Cart) Contains(productID uuid.UUID) bool {
	_, ok := c.state[productID.String()]
	return ok
}

// Len counts all units across entries.
func (c *Cart) Len() int {
	n := 0
	for _, entry := range c.state {
		n += entry.Quantity
	}
	return n
}

// Entries returns the raw stored entries.
func (c *Cart) Entries() []Entry {
	entries := make([]Entry, 0, len(c.state))
	for _, entry := range c.state {
		entries = append(entries, entry)
	}
	return entries
}

// Items joins the stored entries against live product rows. Shipping is
// recomputed from the product record, and entries whose product no longer
// exists are silently dropped.
func (c *Cart) Items(ctx context.Context, products ProductLister) ([]LineItem, error) {
	ids := make([]uuid.UUID, 0, len(c.state))
	for _, entry := range c.state {
		ids = append(ids, entry.ProductID)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]LineItem, 0, len(rows))
	for _, product := range rows {
		entry, ok := c.state[product.ID.String()]
		if !ok {
			continue
		}
		qty := decimal.NewFromInt(int64(entry.Quantity))
		items = append(items, LineItem{
			Product:      product,
			Price:        entry.Price,
			Quantity:     entry.Quantity,
			ShippingCost: product.Shipping,
			TotalPrice:   entry.Price.Mul(qty).Add(product.Shipping),
		})
	}
	return items, nil
}

// TotalPrice is the quantity-weighted sum of entry prices.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range c.state {
		total = total.Add(entry.Price.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return total
}

// ShippingTotal is the quantity-weighted sum of snapshotted shipping costs.
func (c *Cart) ShippingTotal() decimal.Decimal {
	total := decimal.Zero
	for _, entry := range c.state {
		total = total.Add(entry.ShippingCost.Mul(decimal.NewFromInt(int64(entry.Quantity))))
	}
	return total
}

// CombinedTotal is product total plus shipping total.
func (c *Cart) CombinedTotal() decimal.Decimal {
	return c.TotalPrice().Add(c.ShippingTotal())
}

// Save persists the cart if anything changed since Load.
func (c *Cart) Save(ctx context.Context) error {
	if !c.dirty {
		return nil
	}
	if err := c.store.Save(ctx, c.sessionID, c.state); err != nil {
		return err
	}
	c.dirty = false
	return nil
}

// Clear removes the cart from the session entirely.
func (c *Cart) Clear(ctx context.Context) error {
	c.state = State{}
	c.dirty = false
	return c.store.Delete(ctx, c.sessionID)
}
