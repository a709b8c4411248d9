package models

type EarningsPoint struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type EarningsData struct {
	Daily      []EarningsPoint `json:"daily"`
	Weekly     []EarningsPoint `json:"weekly"`
	Monthly    []EarningsPoint `json:"monthly"`
	TotalMined float64         `json:"total_mined"`
}
