package dto

type Filter struct {
	Limit       int    `query:"limit"`
	Page        int    `query:"page"`
	Status      string `query:"status"`
	StaleBefore int64
}

type Pagination struct {
	Previous *string     `json:"previous"`
	Next     *string     `json:"next"`
	Records  interface{} `json:"records"`
}
