package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Product - вид транспорта
type Product uint16

const (
	ProductHighSpeedTrain Product = 1 << iota
	ProductRegionalTrain
	ProductSuburbanTrain
	ProductSubway
	ProductTram
	ProductBus
	ProductFerry
	ProductCablecar
	ProductOnDemand
)

// productOrder задаёт порядок кодов при сериализации
var productOrder = []struct {
	product Product
	code    byte
	name    string
}{
	{ProductHighSpeedTrain, 'I', "HIGH_SPEED_TRAIN"},
	{ProductRegionalTrain, 'R', "REGIONAL_TRAIN"},
	{ProductSuburbanTrain, 'S', "SUBURBAN_TRAIN"},
	{ProductSubway, 'U', "SUBWAY"},
	{ProductTram, 'T', "TRAM"},
	{ProductBus, 'B', "BUS"},
	{ProductFerry, 'F', "FERRY"},
	{ProductCablecar, 'C', "CABLECAR"},
	{ProductOnDemand, 'P', "ON_DEMAND"},
}

// Code возвращает однобуквенный код продукта
func (p Product) Code() byte {
	for _, e := range productOrder {
		if e.product == p {
			return e.code
		}
	}
	return '?'
}

func (p Product) String() string {
	for _, e := range productOrder {
		if e.product == p {
			return e.name
		}
	}
	return "UNKNOWN"
}

// ProductFromCode возвращает продукт по коду
func ProductFromCode(c byte) (Product, error) {
	for _, e := range productOrder {
		if e.code == c {
			return e.product, nil
		}
	}
	return 0, fmt.Errorf("unknown product code: %q", c)
}

// ProductFromName возвращает продукт по имени (HIGH_SPEED_TRAIN, BUS, ...)
func ProductFromName(name string) (Product, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for _, e := range productOrder {
		if e.name == n {
			return e.product, nil
		}
	}
	return 0, fmt.Errorf("unknown product: %q", name)
}

// ProductSet - множество видов транспорта
type ProductSet uint16

// AllProducts содержит все известные продукты
const AllProducts = ProductSet(ProductHighSpeedTrain | ProductRegionalTrain | ProductSuburbanTrain |
	ProductSubway | ProductTram | ProductBus | ProductFerry | ProductCablecar | ProductOnDemand)

// NewProductSet собирает множество из списка продуктов
func NewProductSet(products ...Product) ProductSet {
	var s ProductSet
	for _, p := range products {
		s |= ProductSet(p)
	}
	return s
}

func (s ProductSet) Contains(p Product) bool {
	return s&ProductSet(p) != 0
}

func (s ProductSet) Len() int {
	n := 0
	for _, e := range productOrder {
		if s.Contains(e.product) {
			n++
		}
	}
	return n
}

// Products возвращает продукты в каноническом порядке
func (s ProductSet) Products() []Product {
	out := make([]Product, 0, s.Len())
	for _, e := range productOrder {
		if s.Contains(e.product) {
			out = append(out, e.product)
		}
	}
	return out
}

// Codes кодирует множество в строку кодов ("IRSUTBFCP" для всех продуктов)
func (s ProductSet) Codes() string {
	var b strings.Builder
	for _, e := range productOrder {
		if s.Contains(e.product) {
			b.WriteByte(e.code)
		}
	}
	return b.String()
}

// ParseProductCodes - обратная операция к Codes
func ParseProductCodes(codes string) (ProductSet, error) {
	var s ProductSet
	for i := 0; i < len(codes); i++ {
		p, err := ProductFromCode(codes[i])
		if err != nil {
			return 0, err
		}
		s |= ProductSet(p)
	}
	return s, nil
}

// Names возвращает имена продуктов (для JSON)
func (s ProductSet) Names() []string {
	out := make([]string, 0, s.Len())
	for _, p := range s.Products() {
		out = append(out, p.String())
	}
	return out
}

func (s ProductSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Names())
}

func (s *ProductSet) UnmarshalJSON(data []byte) error {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return fmt.Errorf("products must be a list of names: %w", err)
	}
	var set ProductSet
	for _, n := range names {
		p, err := ProductFromName(n)
		if err != nil {
			return err
		}
		set |= ProductSet(p)
	}
	*s = set
	return nil
}

// ProductSetPtr - помощник для опционального множества
func ProductSetPtr(s ProductSet) *ProductSet {
	return &s
}
