package crm

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"chat-insights-go/internal/types"
)

// relatedOrderWindow is how long after a chat opens an order still counts as
// caused by it.
const relatedOrderWindow = 30 * 24 * time.Hour

func normalizeOrder(raw map[string]any) types.Order {
	o := types.Order{
		ID:          strField(raw, "id", "orderId"),
		Number:      strField(raw, "number"),
		TotalSum:    numField(raw, "totalSumm", "total_summ", "totalSum"),
		PrepaySum:   numField(raw, "prepaySum", "prepay_sum", "prepay"),
		PurchaseSum: numField(raw, "purchaseSumm", "purchase_summ"),
		Status:      strField(raw, "status"),
	}
	if t, ok := parseTime(strField(raw, "createdAt", "created_at")); ok {
		o.CreatedAt = t
	}
	for _, p := range listField(raw, "payments") {
		o.Payments = append(o.Payments, types.OrderPayment{Status: strField(p, "status")})
	}
	return o
}

// OrdersByCustomer lists a customer's orders, cached per run so chats sharing
// a customer cost one fetch.
func (c *Client) OrdersByCustomer(ctx context.Context, customerID string) ([]types.Order, error) {
	if customerID == "" {
		return nil, nil
	}
	if cached, ok := c.ordersCache[customerID]; ok {
		return cached, nil
	}

	query := url.Values{}
	query.Set("filter[customerId]", customerID)

	var out []types.Order
	err := c.paginate(ctx, "/api/v5/orders", query, []string{"orders", "data"}, func(raw map[string]any) bool {
		out = append(out, normalizeOrder(raw))
		return true
	})
	if err != nil {
		return nil, err
	}
	c.ordersCache[customerID] = out
	return out, nil
}

// FindRelatedOrder picks the earliest order created within the window after
// the chat opened; nil when none qualifies.
func FindRelatedOrder(orders []types.Order, chatCreatedAt time.Time) *types.Order {
	if len(orders) == 0 || chatCreatedAt.IsZero() {
		return nil
	}
	windowEnd := chatCreatedAt.Add(relatedOrderWindow)

	var related []types.Order
	for _, o := range orders {
		if o.CreatedAt.IsZero() {
			continue
		}
		if !o.CreatedAt.Before(chatCreatedAt) && !o.CreatedAt.After(windowEnd) {
			related = append(related, o)
		}
	}
	if len(related) == 0 {
		return nil
	}
	sort.Slice(related, func(i, j int) bool { return related[i].CreatedAt.Before(related[j].CreatedAt) })
	return &related[0]
}

// DeterminePaymentStatus classifies an order as paid, partial, unpaid or
// unknown. Sums are authoritative; payment entries and the order status are
// fallbacks for accounts that never fill the sums.
func DeterminePaymentStatus(order *types.Order) types.PaymentStatus {
	if order == nil {
		return types.PaymentUnknown
	}

	paid := order.PrepaySum
	if order.PurchaseSum > paid {
		paid = order.PurchaseSum
	}
	if order.TotalSum > 0 {
		switch {
		case paid >= order.TotalSum:
			return types.PaymentPaid
		case paid > 0:
			return types.PaymentPartial
		default:
			return types.PaymentUnpaid
		}
	}

	for _, p := range order.Payments {
		s := strings.ToLower(p.Status)
		if strings.Contains(s, "paid") || strings.Contains(s, "оплачен") || strings.Contains(s, "success") {
			return types.PaymentPaid
		}
	}

	status := strings.ToLower(order.Status)
	for _, w := range []string{"paid", "оплачен", "completed", "выполнен"} {
		if strings.Contains(status, w) {
			return types.PaymentPaid
		}
	}
	return types.PaymentUnknown
}
