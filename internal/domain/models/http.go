package models

// Requests for the HTTP API. Defined in domain for consistency and reuse.

type AddWatchlistRequest struct {
	Symbol    string `json:"symbol" validate:"required,min=1,max=16"`
	Name      string `json:"name"`
	AssetType string `json:"asset_type" default:"stock" validate:"oneof=stock crypto"`
}

type RetrainRequest struct {
	Symbol string `json:"symbol"`
}

type HistoryRequest struct {
	Days int `query:"days" json:"days" default:"90" validate:"gte=1,lte=2000"`
}

type SignalHistoryRequest struct {
	Limit int `query:"limit" json:"limit" default:"50" validate:"gte=1,lte=500"`
}
