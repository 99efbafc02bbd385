package app

// TrafficRouter describes the authoritative weight state consumed by the load balancing layer.
type TrafficRouter interface {
	SetWeights(w map[PoolID]int) error
	Weights() map[PoolID]int
}
