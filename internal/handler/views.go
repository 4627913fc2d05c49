package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/order-intake/internal/domain/order"
)

type receiptView struct {
	ID          int64           `json:"id"`
	Reference   string          `json:"reference"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	ItemCount   int             `json:"itemCount"`
}

type addressView struct {
	Street     string `json:"street"`
	City       string `json:"city,omitempty"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	Country    string `json:"country,omitempty"`
}

type itemView struct {
	ProductID   int64           `json:"productId"`
	ProductName string          `json:"productName,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

type orderView struct {
	ID              int64           `json:"id,omitempty"`
	CustomerID      *int64          `json:"customerId,omitempty"`
	CustomerEmail   string          `json:"customerEmail,omitempty"`
	SupplierID      int64           `json:"supplierId"`
	SupplierName    string          `json:"supplierName,omitempty"`
	OrderDate       time.Time       `json:"orderDate"`
	Status          string          `json:"status"`
	BillingAddress  addressView     `json:"billingAddress"`
	DeliveryAddress *addressView    `json:"deliveryAddress,omitempty"`
	Items           []itemView      `json:"items"`
	TotalAmount     decimal.Decimal `json:"totalAmount"`
	ItemCount       int             `json:"itemCount"`
}

type pageView struct {
	Items      []orderView `json:"items"`
	TotalCount int64       `json:"totalCount"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
	TotalPages int64       `json:"totalPages"`
}

func toAddressView(a order.Address) addressView {
	return addressView{
		Street:     a.Street,
		City:       a.City,
		Region:     a.Region,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func toOrderView(o *order.Order) orderView {
	items := make([]itemView, len(o.Items))
	for i, it := range o.Items {
		items[i] = itemView{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
			LineTotal:   it.LineTotal(),
		}
	}

	view := orderView{
		ID:             o.ID,
		CustomerID:     o.CustomerID,
		CustomerEmail:  o.CustomerEmail,
		SupplierID:     o.SupplierID,
		SupplierName:   o.SupplierName,
		OrderDate:      o.OrderDate,
		Status:         string(o.Status),
		BillingAddress: toAddressView(o.BillingAddress),
		Items:          items,
		TotalAmount:    o.Total(),
		ItemCount:      len(items),
	}
	if o.DeliveryAddress != nil {
		addr := toAddressView(*o.DeliveryAddress)
		view.DeliveryAddress = &addr
	}
	return view
}
