// Package model declares the persisted entities together with the schema
// descriptor and row codec of each one.
package model

import (
	"time"

	"orders-management/internal/mapper"
	"orders-management/internal/schema"
)

// Client is a customer who can place orders.
type Client struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Email   string `json:"email"`
	Age     int    `json:"age"`
	Phone   string `json:"phone"`
}

// Product is a catalog item with a unit price and a stock level.
type Product struct {
	ID    int64   `json:"id" yaml:"-"`
	Name  string  `json:"name" yaml:"name"`
	Price float64 `json:"price" yaml:"price"`
	Stock int     `json:"stock" yaml:"stock"`
}

// Order is a request by a client for a quantity of one product.
type Order struct {
	ID        int64 `json:"id"`
	ClientID  int64 `json:"client_id"`
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// Bill records the amount charged for one order. Bills are immutable once
// written; the amount is fixed at the price in effect when the order was placed.
type Bill struct {
	ID          int64     `json:"id"`
	OrderID     int64     `json:"order_id"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

var ClientSchema = schema.Descriptor{
	Table:      "client",
	PrimaryKey: "id",
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer},
		{Name: "name", Type: schema.Text},
		{Name: "address", Type: schema.Text},
		{Name: "email", Type: schema.Text},
		{Name: "age", Type: schema.Integer},
		{Name: "phone", Type: schema.Text},
	},
}.MustValidate()

var ProductSchema = schema.Descriptor{
	Table:      "product",
	PrimaryKey: "id",
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer},
		{Name: "name", Type: schema.Text},
		{Name: "price", Type: schema.Real},
		{Name: "stock", Type: schema.Integer},
	},
}.MustValidate()

var OrderSchema = schema.Descriptor{
	Table:      "order",
	PrimaryKey: "id",
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer},
		{Name: "client_id", Type: schema.Integer},
		{Name: "product_id", Type: schema.Integer},
		{Name: "quantity", Type: schema.Integer},
	},
}.MustValidate()

var BillSchema = schema.Descriptor{
	Table:      "bill",
	PrimaryKey: "id",
	Columns: []schema.Column{
		{Name: "id", Type: schema.Integer},
		{Name: "order_id", Type: schema.Integer},
		{Name: "totalAmount", Type: schema.Real},
		{Name: "createdAt", Type: schema.Timestamp},
	},
}.MustValidate()

var ClientCodec = mapper.Codec[Client]{
	Values: func(c Client) []any {
		return []any{c.ID, c.Name, c.Address, c.Email, c.Age, c.Phone}
	},
	Targets: func(c *Client) []any {
		return []any{&c.ID, &c.Name, &c.Address, &c.Email, &c.Age, &c.Phone}
	},
	ID:    func(c Client) int64 { return c.ID },
	SetID: func(c *Client, id int64) { c.ID = id },
}

var ProductCodec = mapper.Codec[Product]{
	Values: func(p Product) []any {
		return []any{p.ID, p.Name, p.Price, p.Stock}
	},
	Targets: func(p *Product) []any {
		return []any{&p.ID, &p.Name, &p.Price, &p.Stock}
	},
	ID:    func(p Product) int64 { return p.ID },
	SetID: func(p *Product, id int64) { p.ID = id },
}

var OrderCodec = mapper.Codec[Order]{
	Values: func(o Order) []any {
		return []any{o.ID, o.ClientID, o.ProductID, o.Quantity}
	},
	Targets: func(o *Order) []any {
		return []any{&o.ID, &o.ClientID, &o.ProductID, &o.Quantity}
	},
	ID:    func(o Order) int64 { return o.ID },
	SetID: func(o *Order, id int64) { o.ID = id },
}

var BillCodec = mapper.Codec[Bill]{
	Values: func(b Bill) []any {
		return []any{b.ID, b.OrderID, b.TotalAmount, b.CreatedAt}
	},
	Targets: func(b *Bill) []any {
		return []any{&b.ID, &b.OrderID, &b.TotalAmount, &b.CreatedAt}
	},
	ID:    func(b Bill) int64 { return b.ID },
	SetID: func(b *Bill, id int64) { b.ID = id },
}
