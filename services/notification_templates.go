package services

import (
	"fmt"
	"strings"

	"github.com/jaypeewhat/ThriftStore/entity"
)

const (
	sellerDashboardLink = "/seller/dashboard"
	previewLen          = 50
)

func buyerOrderLink(orderID string) string { return "/buyer/orders/" + orderID }

func preview(s string) string {
	r := []rune(s)
	if len(r) <= previewLen {
		return s
	}
	return string(r[:previewLen]) + "..."
}

func peso(o entity.Order) string {
	return "₱" + o.TotalAmount.StringFixed(2)
}

// newOrderNotification tells a seller about the orders one checkout placed with them.
func newOrderNotification(sellerID string, orders []entity.Order) *entity.Notification {
	msg := fmt.Sprintf("You have a new order for \"%s\" - %s", orders[0].ProductTitle(), peso(orders[0]))
	if len(orders) > 1 {
		titles := make([]string, len(orders))
		for i := range orders {
			titles[i] = fmt.Sprintf("\"%s\"", orders[i].ProductTitle())
		}
		msg = fmt.Sprintf("You have %d new orders: %s", len(orders), strings.Join(titles, ", "))
	}
	return &entity.Notification{
		UserID:  sellerID,
		Type:    entity.NotifyOrder,
		Title:   "New Order Received!",
		Message: msg,
		Link:    sellerDashboardLink,
	}
}

var statusMessages = map[entity.OrderStatus]string{
	entity.StatusConfirmed: "Your order for \"%s\" has been confirmed by the seller!",
	entity.StatusShipped:   "Great news! Your order for \"%s\" has been shipped!",
	entity.StatusDelivered: "Your order for \"%s\" has been marked as delivered. Enjoy!",
	entity.StatusCancelled: "Your order for \"%s\" has been cancelled by the seller.",
}

func statusNotification(o *entity.Order) *entity.Notification {
	tmpl, ok := statusMessages[o.Status]
	if !ok {
		return nil
	}
	s := string(o.Status)
	return &entity.Notification{
		UserID:  o.BuyerID,
		Type:    entity.NotifyStatusChange,
		Title:   "Order " + strings.ToUpper(s[:1]) + s[1:],
		Message: fmt.Sprintf(tmpl, o.ProductTitle()),
		Link:    buyerOrderLink(o.ID),
	}
}

func cancelRequestNotification(o *entity.Order) *entity.Notification {
	return &entity.Notification{
		UserID:  o.SellerID,
		Type:    entity.NotifyCancelRequest,
		Title:   "Cancellation Requested",
		Message: fmt.Sprintf("Buyer requested to cancel the order for \"%s\"", o.ProductTitle()),
		Link:    sellerDashboardLink,
	}
}

func cancelResolvedNotification(o *entity.Order) *entity.Notification {
	n := &entity.Notification{
		UserID:  o.BuyerID,
		Type:    entity.NotifyStatusChange,
		Title:   "Cancellation Approved",
		Message: fmt.Sprintf("Your cancellation request for \"%s\" has been approved.", o.ProductTitle()),
		Link:    buyerOrderLink(o.ID),
	}
	if o.Status != entity.StatusCancelled {
		n.Title = "Cancellation Rejected"
		n.Message = fmt.Sprintf("Your cancellation request for \"%s\" has been rejected by the seller.", o.ProductTitle())
	}
	return n
}

func messageNotification(receiverID, senderName string, o *entity.Order, content string) *entity.Notification {
	link := sellerDashboardLink
	if receiverID == o.BuyerID {
		link = buyerOrderLink(o.ID)
	}
	return &entity.Notification{
		UserID:  receiverID,
		Type:    entity.NotifyMessage,
		Title:   "New Message",
		Message: fmt.Sprintf("%s sent you a message: \"%s\"", senderName, preview(content)),
		Link:    link,
	}
}

func ratingNotification(sellerID string, rating int, review string) *entity.Notification {
	msg := fmt.Sprintf("You received a %d-star rating", rating)
	if review != "" {
		msg += fmt.Sprintf(" with review: \"%s\"", preview(review))
	}
	return &entity.Notification{
		UserID:  sellerID,
		Type:    entity.NotifyOrder,
		Title:   "New Rating Received",
		Message: msg,
		Link:    sellerDashboardLink,
	}
}
