package request

import "encoding/json"

// PaymentCreateRequest is the payload for collecting payment on an invoice.
//
// `provider_payload` is stored as-is (raw JSON) to support varying payment
// provider schemas.

type PaymentCreateRequest struct {
	ProviderPayload json.RawMessage `json:"provider_payload"`
}
