package domain

import "strings"

// NetworkID - идентификатор транспортной сети (провайдера)
type NetworkID string

// Известные сети. Избранное хранится отдельно для каждой из них.
const (
	NetworkDB    NetworkID = "DB"
	NetworkBVG   NetworkID = "BVG"
	NetworkVBB   NetworkID = "VBB"
	NetworkMVV   NetworkID = "MVV"
	NetworkVRS   NetworkID = "VRS"
	NetworkVVO   NetworkID = "VVO"
	NetworkRT    NetworkID = "RT"
	NetworkSBB   NetworkID = "SBB"
	NetworkOEBB  NetworkID = "OEBB"
	NetworkVAO   NetworkID = "VAO"
	NetworkNS    NetworkID = "NS"
	NetworkDSB   NetworkID = "DSB"
	NetworkSNCB  NetworkID = "SNCB"
	NetworkTFL   NetworkID = "TFL"
	NetworkPARIS NetworkID = "PARIS"
)

var knownNetworks = map[NetworkID]struct{}{
	NetworkDB:    {},
	NetworkBVG:   {},
	NetworkVBB:   {},
	NetworkMVV:   {},
	NetworkVRS:   {},
	NetworkVVO:   {},
	NetworkRT:    {},
	NetworkSBB:   {},
	NetworkOEBB:  {},
	NetworkVAO:   {},
	NetworkNS:    {},
	NetworkDSB:   {},
	NetworkSNCB:  {},
	NetworkTFL:   {},
	NetworkPARIS: {},
}

// IsKnown проверяет, что сеть зарегистрирована
func (n NetworkID) IsKnown() bool {
	_, ok := knownNetworks[n]
	return ok
}

// ParseNetworkID нормализует ввод; второй результат false для неизвестных сетей
func ParseNetworkID(s string) (NetworkID, bool) {
	n := NetworkID(strings.ToUpper(strings.TrimSpace(s)))
	return n, n.IsKnown()
}
