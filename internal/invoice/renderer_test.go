package invoice

import (
	"bytes"
	"testing"
	"time"

	domain "github.com/blendaura/api/internal/domain"
)

func sampleOrder() domain.Order {
	return domain.Order{
		ID:          "ord_01HTEST",
		OrderNumber: "BD-2026-0042",
		Items: []domain.OrderItem{
			{ProductRef: "prd_1", Name: "Rose Body Butter", Quantity: 2, UnitPrice: 49900},
			{ProductRef: "prd_2", Name: "Neem Face Wash", Quantity: 1, UnitPrice: 19900},
		},
		Total:         119700,
		PaymentMethod: domain.PaymentMethodUPI,
		PaymentStatus: domain.PaymentStatusPaid,
		Status:        domain.OrderStatusProcessing,
		Shipping: domain.ShippingDetails{
			Name:    "Asha Rao",
			Email:   "asha@example.com",
			Phone:   "9876543210",
			Address: "12 MG Road, Bengaluru 560001",
		},
		CreatedAt: time.Date(2026, time.March, 14, 10, 30, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	pdf, err := NewRenderer().Render(sampleOrder())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if len(pdf) == 0 {
		t.Fatal("empty document")
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatalf("document prefix = %q, want %%PDF", pdf[:4])
	}
}

func TestRenderRejectsEmptyOrder(t *testing.T) {
	order := sampleOrder()
	order.Items = nil
	if _, err := NewRenderer().Render(order); err == nil {
		t.Fatal("expected error for order without items")
	}
}

func TestFilename(t *testing.T) {
	if got := Filename(sampleOrder()); got != "invoice-ord_01HTEST.pdf" {
		t.Fatalf("filename = %q, want invoice-ord_01HTEST.pdf", got)
	}
}

func TestFormatAmountIndianGrouping(t *testing.T) {
	cases := []struct {
		paise int64
		want  string
	}{
		{0, "Rs 0.00"},
		{50, "Rs 0.50"},
		{49900, "Rs 499.00"},
		{12345678, "Rs 1,23,456.78"},
		{100000000, "Rs 10,00,000.00"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.paise); got != tc.want {
			t.Errorf("FormatAmount(%d) = %q, want %q", tc.paise, got, tc.want)
		}
	}
}
