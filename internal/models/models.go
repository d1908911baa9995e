package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Game is a catalog entry. Key is the natural key and the primary key of the
// games table; genre and platform links reference it rather than ID.
type Game struct {
	ID           string          `db:"id" json:"id"`
	Key          string          `db:"key" json:"key"`
	Name         string          `db:"name" json:"name"`
	Description  *string         `db:"description" json:"description,omitempty"`
	UnitInStock  int             `db:"unit_in_stock" json:"unitInStock"`
	Price        decimal.Decimal `db:"price" json:"price"`
	Discontinued int             `db:"discontinued" json:"discontinued"`
	PublisherID  *string         `db:"publisher_id" json:"publisherId,omitempty"`
	Version      int             `db:"version" json:"-"`

	Publisher     *Publisher     `db:"-" json:"publisher,omitempty"`
	GameGenres    []GameGenre    `db:"-" json:"-"`
	GamePlatforms []GamePlatform `db:"-" json:"-"`
}

// NewGame returns a game with a freshly generated id.
func NewGame() *Game {
	return &Game{ID: uuid.NewString()}
}

// GenreIDs returns the ids of the linked genres in link order.
func (g *Game) GenreIDs() []string {
	ids := make([]string, 0, len(g.GameGenres))
	for _, gg := range g.GameGenres {
		ids = append(ids, gg.GenresID)
	}
	return ids
}

// PlatformIDs returns the ids of the linked platforms in link order.
func (g *Game) PlatformIDs() []string {
	ids := make([]string, 0, len(g.GamePlatforms))
	for _, gp := range g.GamePlatforms {
		ids = append(ids, gp.PlatformsID)
	}
	return ids
}

// Genre can hang off a parent genre. The tree is not checked for cycles.
type Genre struct {
	ID            string  `db:"id" json:"id"`
	Name          string  `db:"name" json:"name"`
	ParentGenreID *string `db:"parent_genre_id" json:"parentGenreId"`
	Version       int     `db:"version" json:"-"`
}

func NewGenre() *Genre {
	return &Genre{ID: uuid.NewString()}
}

type Platform struct {
	ID      string `db:"id" json:"id"`
	Type    string `db:"type" json:"type"`
	Version int    `db:"version" json:"-"`
}

func NewPlatform() *Platform {
	return &Platform{ID: uuid.NewString()}
}

type Publisher struct {
	ID          string `db:"id" json:"id"`
	CompanyName string `db:"company_name" json:"companyName"`
	Description string `db:"description" json:"description"`
	HomePage    string `db:"home_page" json:"homePage"`
	Version     int    `db:"version" json:"-"`

	Games []Game `db:"-" json:"-"`
}

func NewPublisher() *Publisher {
	return &Publisher{ID: uuid.NewString()}
}

// GameGenre links a game (by key) to a genre.
type GameGenre struct {
	GamesKey string `db:"games_key"`
	GenresID string `db:"genres_id"`

	Genre *Genre `db:"-"`
}

// GamePlatform links a game (by key) to a platform.
type GamePlatform struct {
	GamesKey    string `db:"games_key"`
	PlatformsID string `db:"platforms_id"`

	Platform *Platform `db:"-"`
}

// Customer is a stub referenced by orders.
type Customer struct {
	ID string `db:"id" json:"id"`
}

// Order is a basket while PaidDate is nil and a paid order afterwards.
type Order struct {
	ID           string     `db:"id" json:"id"`
	OrderDate    time.Time  `db:"order_date" json:"orderDate"`
	CreationDate time.Time  `db:"creation_date" json:"creationDate"`
	PaidDate     *time.Time `db:"paid_date" json:"paidDate,omitempty"`
	CustomerID   *string    `db:"customer_id" json:"customerId,omitempty"`

	OrderDetails []OrderDetail `db:"-" json:"orderDetails"`
}

func NewOrder(now time.Time) *Order {
	return &Order{
		ID:           uuid.NewString(),
		OrderDate:    now,
		CreationDate: now,
		OrderDetails: []OrderDetail{},
	}
}

// IsBasket reports whether the order has not been paid yet.
func (o *Order) IsBasket() bool {
	return o.PaidDate == nil
}

type OrderDetail struct {
	ID          string          `db:"id" json:"id"`
	ProductID   *string         `db:"product_id" json:"productId"`
	ProductName *string         `db:"product_name" json:"productName"`
	Sum         decimal.Decimal `db:"sum" json:"sum"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Quantity    int             `db:"quantity" json:"quantity"`
	Discount    decimal.Decimal `db:"discount" json:"discount"`
	OrderID     string          `db:"order_id" json:"orderId"`
	Seq         int64           `db:"seq" json:"-"`
}

func NewOrderDetail() OrderDetail {
	return OrderDetail{ID: uuid.NewString()}
}

// LineSum is price * quantity - discount.
func LineSum(price decimal.Decimal, quantity int, discount decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity))).Sub(discount)
}
