package lifecycle

import "time"

// Product is the catalog's view of a listing, carried on order items as an
// opaque value object.
type Product struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price int64  `json:"price"`
	Image string `json:"image"`
}

type Item struct {
	Product Product `json:"product"`
	Price   int64   `json:"price"` // agreed price in naira, may differ from listing price
	IsSwap  bool    `json:"is_swap"`
}

type TrackingStep struct {
	Status    OrderStatus `json:"status"`
	Label     string      `json:"label"`
	Completed bool        `json:"completed"`
	Timestamp *time.Time  `json:"timestamp,omitempty"`
	Location  string      `json:"location,omitempty"`
}

type Order struct {
	ID                 string         `json:"id"`
	Items              []Item         `json:"items"`
	DeliveryFee        int64          `json:"delivery_fee"`
	TotalAmount        int64          `json:"total_amount"`
	Status             OrderStatus    `json:"status"`
	PipelineID         string         `json:"pipeline_id"`
	TrackingSteps      []TrackingStep `json:"tracking_steps"`
	VerificationReport string         `json:"verification_report,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// StatusChange describes one applied transition, for the notification sink.
type StatusChange struct {
	OrderID   string      `json:"order_id"`
	OldStatus OrderStatus `json:"old_status"`
	NewStatus OrderStatus `json:"new_status"`
	At        time.Time   `json:"at"`
}

// NewOrder builds an order at the first stage of the given pipeline. The full
// step sequence is attached up front; only the first step is completed and
// stamped. The clock is injected so callers control timestamps.
func NewOrder(id string, items []Item, deliveryFee int64, p *Pipeline, now time.Time) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrEmptyItems
	}

	var total int64
	for _, item := range items {
		total += item.Price
	}
	total += deliveryFee

	steps := make([]TrackingStep, len(p.Steps))
	for i, tmpl := range p.Steps {
		steps[i] = TrackingStep{
			Status: tmpl.Status,
			Label:  tmpl.Label,
		}
	}
	created := now.UTC()
	steps[0].Completed = true
	steps[0].Timestamp = &created

	itemsCopy := make([]Item, len(items))
	copy(itemsCopy, items)

	return &Order{
		ID:            id,
		Items:         itemsCopy,
		DeliveryFee:   deliveryFee,
		TotalAmount:   total,
		Status:        p.First(),
		PipelineID:    p.ID,
		TrackingSteps: steps,
		CreatedAt:     created,
		UpdatedAt:     created,
	}, nil
}

func (o *Order) Pipeline() *Pipeline {
	p, err := GetPipeline(o.PipelineID)
	if err != nil {
		// Orders are only created through NewOrder, so the template exists.
		panic("lifecycle: order references unknown pipeline " + o.PipelineID)
	}
	return p
}

// ActiveStepIndex returns the pipeline index of the order's current status.
func (o *Order) ActiveStepIndex() int {
	idx, _ := o.Pipeline().Index(o.Status)
	return idx
}

func (o *Order) Terminal() bool {
	return o.Status == o.Pipeline().Last()
}

// Clone returns a deep copy, so stores can hand out orders without exposing
// their internal state to mutation.
func (o *Order) Clone() *Order {
	clone := *o

	clone.Items = make([]Item, len(o.Items))
	copy(clone.Items, o.Items)

	clone.TrackingSteps = make([]TrackingStep, len(o.TrackingSteps))
	copy(clone.TrackingSteps, o.TrackingSteps)
	for i, step := range o.TrackingSteps {
		if step.Timestamp != nil {
			ts := *step.Timestamp
			clone.TrackingSteps[i].Timestamp = &ts
		}
	}

	return &clone
}

// Transition moves the order to target and updates the tracking steps: every
// step at or before the target becomes completed, and the target step alone
// gets a fresh timestamp. Skipping intermediate stages is allowed; they
// complete without timestamps. Regress and same-status targets are rejected
// and leave the order untouched.
func (o *Order) Transition(target OrderStatus, now time.Time) (StatusChange, error) {
	p := o.Pipeline()

	targetIdx, ok := p.Index(target)
	if !ok {
		return StatusChange{}, ErrUnknownStatus
	}
	currentIdx, _ := p.Index(o.Status)
	if targetIdx <= currentIdx {
		return StatusChange{}, ErrInvalidTransition
	}

	at := now.UTC()
	old := o.Status
	o.Status = target
	o.UpdatedAt = at
	for i := range o.TrackingSteps {
		if i <= targetIdx {
			o.TrackingSteps[i].Completed = true
		}
		if i == targetIdx {
			ts := at
			o.TrackingSteps[i].Timestamp = &ts
		}
	}

	return StatusChange{
		OrderID:   o.ID,
		OldStatus: old,
		NewStatus: target,
		At:        at,
	}, nil
}

// AttachVerificationReport stores the hub's condition report. Attaching the
// same text twice is a no-op; a different text while one is already set fails.
func (o *Order) AttachVerificationReport(report string) error {
	if o.Status != StatusAtHubVerification {
		return ErrReportNotAllowed
	}
	if o.VerificationReport != "" {
		if o.VerificationReport == report {
			return nil
		}
		return ErrReportAlreadySet
	}
	o.VerificationReport = report
	return nil
}
