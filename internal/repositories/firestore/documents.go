package firestore

import (
	"strings"
	"time"

	domain "github.com/blendaura/api/internal/domain"
)

type productDocument struct {
	Name            string    `firestore:"name"`
	Price           int64     `firestore:"price"`
	Stock           int       `firestore:"stock"`
	Category        string    `firestore:"category"`
	CategoryLower   string    `firestore:"categoryLower"`
	Description     string    `firestore:"description"`
	ImageURL        string    `firestore:"imageUrl"`
	ImageObjectName string    `firestore:"imageObjectName"`
	CreatedAt       time.Time `firestore:"createdAt"`
	UpdatedAt       time.Time `firestore:"updatedAt"`
}

func newProductDocument(product domain.Product) productDocument {
	return productDocument{
		Name:            product.Name,
		Price:           product.Price,
		Stock:           product.Stock,
		Category:        product.Category,
		CategoryLower:   strings.ToLower(strings.TrimSpace(product.Category)),
		Description:     product.Description,
		ImageURL:        product.Image.URL,
		ImageObjectName: product.Image.ObjectName,
		CreatedAt:       product.CreatedAt.UTC(),
		UpdatedAt:       product.UpdatedAt.UTC(),
	}
}

func (d productDocument) toDomain(id string) domain.Product {
	return domain.Product{
		ID:          id,
		Name:        d.Name,
		Price:       d.Price,
		Stock:       d.Stock,
		Category:    d.Category,
		Description: d.Description,
		Image: domain.ProductImage{
			URL:        d.ImageURL,
			ObjectName: d.ImageObjectName,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type orderItemDocument struct {
	ProductRef string `firestore:"productRef"`
	Name       string `firestore:"name"`
	Quantity   int    `firestore:"quantity"`
	UnitPrice  int64  `firestore:"unitPrice"`
	Image      string `firestore:"image"`
}

type shippingDocument struct {
	Name    string `firestore:"name"`
	Email   string `firestore:"email"`
	Phone   string `firestore:"phone"`
	Address string `firestore:"address"`
}

type orderDocument struct {
	OrderNumber   string              `firestore:"orderNumber"`
	UserID        string              `firestore:"userId"`
	Items         []orderItemDocument `firestore:"items"`
	Total         int64               `firestore:"total"`
	PaymentMethod string              `firestore:"paymentMethod"`
	PaymentStatus string              `firestore:"paymentStatus"`
	PaymentRef    string              `firestore:"paymentRef"`
	Status        string              `firestore:"status"`
	Shipping      shippingDocument    `firestore:"shipping"`
	CreatedAt     time.Time           `firestore:"createdAt"`
	UpdatedAt     time.Time           `firestore:"updatedAt"`
}

func newOrderDocument(order domain.Order) orderDocument {
	items := make([]orderItemDocument, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, orderItemDocument{
			ProductRef: item.ProductRef,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Image:      item.Image,
		})
	}
	return orderDocument{
		OrderNumber:   order.OrderNumber,
		UserID:        order.UserID,
		Items:         items,
		Total:         order.Total,
		PaymentMethod: string(order.PaymentMethod),
		PaymentStatus: string(order.PaymentStatus),
		PaymentRef:    order.PaymentRef,
		Status:        string(order.Status),
		Shipping: shippingDocument{
			Name:    order.Shipping.Name,
			Email:   order.Shipping.Email,
			Phone:   order.Shipping.Phone,
			Address: order.Shipping.Address,
		},
		CreatedAt: order.CreatedAt.UTC(),
		UpdatedAt: order.UpdatedAt.UTC(),
	}
}

func (d orderDocument) toDomain(id string) domain.Order {
	items := make([]domain.OrderItem, 0, len(d.Items))
	for _, item := range d.Items {
		items = append(items, domain.OrderItem{
			ProductRef: item.ProductRef,
			Name:       item.Name,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Image:      item.Image,
		})
	}
	return domain.Order{
		ID:            id,
		OrderNumber:   d.OrderNumber,
		UserID:        d.UserID,
		Items:         items,
		Total:         d.Total,
		PaymentMethod: domain.PaymentMethod(d.PaymentMethod),
		PaymentStatus: domain.PaymentStatus(d.PaymentStatus),
		PaymentRef:    d.PaymentRef,
		Status:        domain.OrderStatus(d.Status),
		Shipping: domain.ShippingDetails{
			Name:    d.Shipping.Name,
			Email:   d.Shipping.Email,
			Phone:   d.Shipping.Phone,
			Address: d.Shipping.Address,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type userDocument struct {
	Name         string    `firestore:"name"`
	Email        string    `firestore:"email"`
	EmailLower   string    `firestore:"emailLower"`
	PasswordHash string    `firestore:"passwordHash"`
	Role         string    `firestore:"role"`
	Verified     bool      `firestore:"verified"`
	CreatedAt    time.Time `firestore:"createdAt"`
	UpdatedAt    time.Time `firestore:"updatedAt"`
}

func newUserDocument(user domain.User) userDocument {
	return userDocument{
		Name:         user.Name,
		Email:        user.Email,
		EmailLower:   strings.ToLower(strings.TrimSpace(user.Email)),
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Verified:     user.Verified,
		CreatedAt:    user.CreatedAt.UTC(),
		UpdatedAt:    user.UpdatedAt.UTC(),
	}
}

func (d userDocument) toDomain(id string) domain.User {
	return domain.User{
		ID:           id,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		Role:         domain.Role(d.Role),
		Verified:     d.Verified,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type contactDocument struct {
	Name      string    `firestore:"name"`
	Email     string    `firestore:"email"`
	Message   string    `firestore:"message"`
	CreatedAt time.Time `firestore:"createdAt"`
}

func newContactDocument(message domain.ContactMessage) contactDocument {
	return contactDocument{
		Name:      message.Name,
		Email:     message.Email,
		Message:   message.Message,
		CreatedAt: message.CreatedAt.UTC(),
	}
}

func (d contactDocument) toDomain(id string) domain.ContactMessage {
	return domain.ContactMessage{
		ID:        id,
		Name:      d.Name,
		Email:     d.Email,
		Message:   d.Message,
		CreatedAt: d.CreatedAt,
	}
}
