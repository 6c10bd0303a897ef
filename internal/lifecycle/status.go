package lifecycle

type OrderStatus string

const (
	StatusEscrowLocked      OrderStatus = "escrow_locked"
	StatusProcessing        OrderStatus = "processing"
	StatusPickupScheduled   OrderStatus = "pickup_scheduled"
	StatusInTransitToHub    OrderStatus = "in_transit_to_hub"
	StatusAtHubVerification OrderStatus = "at_hub_verification"
	StatusVerified          OrderStatus = "verified"
	StatusOutForDelivery    OrderStatus = "out_for_delivery"
	StatusDelivered         OrderStatus = "delivered"
)

func ValidStatus(status OrderStatus) bool {
	switch status {
	case StatusEscrowLocked, StatusProcessing, StatusPickupScheduled,
		StatusInTransitToHub, StatusAtHubVerification, StatusVerified,
		StatusOutForDelivery, StatusDelivered:
		return true
	}
	return false
}

// StepTemplate is one stage of a pipeline: the status plus its display label.
type StepTemplate struct {
	Status OrderStatus
	Label  string
}

// Pipeline is the fixed, ordered list of stages an order passes through.
// Step order defines the pipeline index; an order may only move to a stage
// with a strictly greater index.
type Pipeline struct {
	ID    string
	Steps []StepTemplate
}

const (
	PipelineStandard = "standard"
	PipelineDirect   = "direct"
)

var pipelines = map[string]*Pipeline{
	PipelineStandard: {
		ID: PipelineStandard,
		Steps: []StepTemplate{
			{StatusProcessing, "Payment Secured in Escrow"},
			{StatusPickupScheduled, "Waiting for Seller Pickup"},
			{StatusInTransitToHub, "In Transit to Verification Hub"},
			{StatusAtHubVerification, "Hub Verification in Progress"},
			{StatusVerified, "Condition Verified"},
			{StatusOutForDelivery, "Out for Delivery"},
			{StatusDelivered, "Delivered"},
		},
	},
	PipelineDirect: {
		ID: PipelineDirect,
		Steps: []StepTemplate{
			{StatusEscrowLocked, "Payment Secured in Escrow"},
			{StatusDelivered, "Delivered"},
		},
	},
}

func GetPipeline(id string) (*Pipeline, error) {
	p, ok := pipelines[id]
	if !ok {
		return nil, ErrUnknownPipeline
	}
	return p, nil
}

// Index returns the position of status within the pipeline, or false when the
// status is not one of its stages.
func (p *Pipeline) Index(status OrderStatus) (int, bool) {
	for i, step := range p.Steps {
		if step.Status == status {
			return i, true
		}
	}
	return 0, false
}

func (p *Pipeline) First() OrderStatus {
	return p.Steps[0].Status
}

func (p *Pipeline) Last() OrderStatus {
	return p.Steps[len(p.Steps)-1].Status
}

// Selector maps order characteristics to a pipeline template id. The mapping
// is deployment policy, not a property of the items themselves.
type Selector struct {
	directEscrowEnabled bool
}

func NewSelector(directEscrowEnabled bool) *Selector {
	return &Selector{directEscrowEnabled: directEscrowEnabled}
}

// Select picks the pipeline for a new order. Swap items always go through hub
// verification; plain escrow purchases take the two-stage fast path when it is
// enabled.
func (s *Selector) Select(items []Item) *Pipeline {
	for _, item := range items {
		if item.IsSwap {
			return pipelines[PipelineStandard]
		}
	}
	if s.directEscrowEnabled {
		return pipelines[PipelineDirect]
	}
	return pipelines[PipelineStandard]
}
