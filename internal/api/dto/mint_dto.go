package dto

// MintRequest is the body of POST /api/v1/tickets/mint.
type MintRequest struct {
	EventID         string   `json:"eventId" binding:"required"`
	WalletAddresses []string `json:"walletAddresses" binding:"required,min=1,dive,required"`
}

// MintJobResponse is the job status read model.
type MintJobResponse struct {
	JobID                string   `json:"jobId"`
	Status               string   `json:"status"`
	EventID              string   `json:"eventId,omitempty"`
	WalletAddresses      []string `json:"walletAddresses,omitempty"`
	TransactionSignature string   `json:"transactionSignature,omitempty"`
	Error                string   `json:"error,omitempty"`
	CreatedAt            string   `json:"createdAt,omitempty"`
	CompletedAt          string   `json:"completedAt,omitempty"`
}

// MintJobMessage is the payload published to the minting queue for the
// out-of-process worker.
type MintJobMessage struct {
	JobID           string   `json:"jobId"`
	EventID         string   `json:"eventId"`
	WalletAddresses []string `json:"walletAddresses"`
	RequestedAt     string   `json:"requestedAt"`
}
