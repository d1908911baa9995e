package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// GameFields is the scalar part of a game in requests and responses.
type GameFields struct {
	ID           string          `json:"id,omitempty"`
	Name         string          `json:"name"`
	Key          string          `json:"key"`
	Description  *string         `json:"description,omitempty"`
	UnitInStock  int             `json:"unitInStock"`
	Price        decimal.Decimal `json:"price"`
	Discontinued int             `json:"discontinued"`
	Version      int             `json:"version,omitempty"`
}

type GameCreateRequest struct {
	Game      *GameFields `json:"game" binding:"required"`
	Genres    []string    `json:"genres"`
	Platforms []string    `json:"platforms"`
	Publisher string      `json:"publisher"`
}

// GameUpdateRequest replaces associations only for the lists that are
// present. A nil Publisher leaves the publisher alone.
type GameUpdateRequest struct {
	Game      *GameFields `json:"game" binding:"required"`
	Genres    []string    `json:"genres,omitempty"`
	Platforms []string    `json:"platforms,omitempty"`
	Publisher *string     `json:"publisher,omitempty"`
}

type GameModel struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Key          string          `json:"key"`
	Description  *string         `json:"description,omitempty"`
	UnitInStock  int             `json:"unitInStock"`
	Price        decimal.Decimal `json:"price"`
	Discontinued int             `json:"discontinued"`
	PublisherID  *string         `json:"publisherId,omitempty"`
	Version      int             `json:"version"`
	Genres       []string        `json:"genres,omitempty"`
	Platforms    []string        `json:"platforms,omitempty"`
}

type GameDownload struct {
	Name         string          `json:"name"`
	Key          string          `json:"key"`
	Description  *string         `json:"description,omitempty"`
	UnitInStock  int             `json:"unitInStock"`
	Price        decimal.Decimal `json:"price"`
	Discontinued int             `json:"discontinued"`
	FileName     string          `json:"fileName"`
	FileContent  []byte          `json:"fileContent"`
}

// GameName is the short game projection used by the by-genre, by-platform
// and by-publisher listings.
type GameName struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type PlatformRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type GenreFields struct {
	ID            string  `json:"id,omitempty"`
	Name          string  `json:"name"`
	ParentGenreID *string `json:"parentGenreId"`
	Version       int     `json:"version,omitempty"`
}

type GenreRequest struct {
	Genre *GenreFields `json:"genre" binding:"required"`
}

type PlatformFields struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Version int    `json:"version,omitempty"`
}

type PlatformRequest struct {
	Platform *PlatformFields `json:"platform" binding:"required"`
}

type PublisherFields struct {
	ID          string `json:"id,omitempty"`
	CompanyName string `json:"companyName"`
	Description string `json:"description"`
	HomePage    string `json:"homePage"`
	Version     int    `json:"version,omitempty"`
}

type PublisherRequest struct {
	Publisher *PublisherFields `json:"publisher" binding:"required"`
}

type OrderDetailModel struct {
	ID        string          `json:"id"`
	ProductID *string         `json:"productId"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	Discount  decimal.Decimal `json:"discount"`
}

type OrderModel struct {
	ID         string    `json:"id"`
	OrderDate  time.Time `json:"orderDate"`
	CustomerID *string   `json:"customerId"`
}

// OrderResult is an order with its lines.
type OrderResult struct {
	ID           string             `json:"id"`
	OrderDate    time.Time          `json:"orderDate"`
	CustomerID   *string            `json:"customerId"`
	OrderDetails []OrderDetailModel `json:"orderDetails"`
}

// BasketOrder is a basket order reduced to its first line.
type BasketOrder struct {
	ID          string          `json:"id"`
	ProductID   *string         `json:"productId"`
	ProductName *string         `json:"productName"`
	Sum         decimal.Decimal `json:"sum"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Discount    decimal.Decimal `json:"discount"`
}

type OrderCreateRequest struct {
	CustomerID *string  `json:"customerId"`
	Games      []string `json:"games" binding:"required,min=1"`
}

type OrderCreateResponse struct {
	ID           string             `json:"id"`
	CustomerID   *string            `json:"customerId"`
	OrderDate    time.Time          `json:"orderDate"`
	CreationDate time.Time          `json:"creationDate"`
	PaidDate     *time.Time         `json:"paidDate"`
	Price        decimal.Decimal    `json:"price"`
	Discount     decimal.Decimal    `json:"discount"`
	Sum          decimal.Decimal    `json:"sum"`
	OrderDetails []OrderDetailModel `json:"orderDetails"`
}
