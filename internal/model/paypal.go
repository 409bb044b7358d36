package model

// Wire types for the subset of the PayPal REST API this service
// consumes. Only the fields reconciliation reads are mapped.

type PaypalLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type PaypalAmount struct {
	Currency string `json:"currency_code"`
	Value    string `json:"value"`
}

type PaypalPurchaseUnit struct {
	ReferenceID string `json:"reference_id"`
	CustomID    string `json:"custom_id"`
}

type PaypalResource struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Amount PaypalAmount `json:"amount"`

	// CustomID carries our internal order id, set when the provider
	// order is created.
	CustomID      string               `json:"custom_id"`
	PurchaseUnits []PaypalPurchaseUnit `json:"purchase_units"`
}

type PaypalWebhookEvent struct {
	ID         string         `json:"id"`
	EventType  string         `json:"event_type"`
	CreateTime string         `json:"create_time"`
	Resource   PaypalResource `json:"resource"`
}

// OrderRef resolves the internal order id embedded in the event, from
// the capture resource's custom_id or the checkout order's purchase
// units.
func (e *PaypalWebhookEvent) OrderRef() string {
	if e.Resource.CustomID != "" {
		return e.Resource.CustomID
	}
	for _, pu := range e.Resource.PurchaseUnits {
		if pu.CustomID != "" {
			return pu.CustomID
		}
	}
	return ""
}
