package types

import "time"

// Direction of a message: "in" is written by the customer, "out" by a
// manager (or a bot acting as one).
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Channel is the messaging source a conversation arrived through.
type Channel string

const (
	ChannelWhatsApp  Channel = "whatsapp"
	ChannelInstagram Channel = "instagram"
)

type Message struct {
	ID          string    `json:"id"`
	ChatID      string    `json:"chat_id"`
	Direction   Direction `json:"direction"`
	SentAt      time.Time `json:"sent_at"`
	Text        string    `json:"text"`
	ManagerID   string    `json:"manager_id,omitempty"` // outbound only
	MessageType string    `json:"message_type,omitempty"`
	AuthorType  string    `json:"author_type,omitempty"`
}

// Conversation is one chat with its message history resolved. It is built
// once per run from CRM data and never mutated afterwards.
type Conversation struct {
	ID          string    `json:"id"`
	Channel     Channel   `json:"channel"`
	ManagerID   string    `json:"manager_id"`
	ManagerName string    `json:"manager_name"`
	ClientID    string    `json:"client_id"`
	OrderID     string    `json:"order_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Status      string    `json:"status"`
	Messages    []Message `json:"messages"`

	// Order enrichment, filled when the order check is enabled.
	HasOrder      bool          `json:"has_order"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
}

// PaymentStatus of the order linked to a conversation.
type PaymentStatus string

const (
	PaymentPaid    PaymentStatus = "paid"
	PaymentPartial PaymentStatus = "partial"
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentUnknown PaymentStatus = "unknown"
)

type OrderPayment struct {
	Status string `json:"status"`
}

type Order struct {
	ID          string         `json:"id"`
	Number      string         `json:"number"`
	CreatedAt   time.Time      `json:"created_at"`
	TotalSum    float64        `json:"total_sum"`
	PrepaySum   float64        `json:"prepay_sum"`
	PurchaseSum float64        `json:"purchase_sum"`
	Status      string         `json:"status"`
	Payments    []OrderPayment `json:"payments,omitempty"`
}

type User struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

// DisplayName picks the most human-friendly identifier a user record carries.
func (u User) DisplayName() string {
	switch {
	case u.FirstName != "":
		return u.FirstName
	case u.Name != "":
		return u.Name
	case u.Email != "":
		return u.Email
	default:
		return u.ID
	}
}
