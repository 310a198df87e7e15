package services

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/spad0604/robot-delivery/internal/domain"
)

// ReceiverTables holds the vocabularies synthetic receivers are drawn from.
type ReceiverTables struct {
	LastNames     []string
	FirstNames    []string
	PhonePrefixes []string
	Goods         []string
}

// DefaultReceiverTables returns Vietnamese names, mobile prefixes and a
// mix of everyday goods.
func DefaultReceiverTables() ReceiverTables {
	return ReceiverTables{
		LastNames: []string{
			"Nguyễn", "Trần", "Lê", "Phạm", "Hoàng", "Huỳnh", "Phan", "Vũ", "Võ", "Đặng",
			"Bùi", "Đỗ", "Hồ", "Ngô", "Dương", "Lý", "Đinh", "Trịnh", "Mai", "Tô",
		},
		FirstNames: []string{
			"Anh", "Bảo", "Chi", "Dũng", "Đức", "Giang", "Hà", "Hải", "Hằng", "Hiếu",
			"Hoa", "Hùng", "Hương", "Khang", "Khánh", "Khoa", "Lan", "Linh", "Long", "Mai",
			"Minh", "Nam", "Nga", "Ngọc", "Nhung", "Phong", "Phương", "Quân", "Quang", "Quyên",
			"Sơn", "Thành", "Thảo", "Thu", "Thủy", "Trang", "Trinh", "Trung", "Tú", "Tùng",
			"Tuyết", "Uyên", "Vân", "Việt", "Yến",
		},
		PhonePrefixes: []string{"084", "085", "086", "088", "089", "090", "091", "093", "094", "096", "097", "098"},
		Goods: []string{
			"Điện thoại iPhone 15",
			"Laptop Dell XPS 13",
			"Tai nghe AirPods Pro",
			"Đồng hồ Apple Watch",
			"Máy tính bảng iPad Air",
			"Quần áo thời trang",
			"Giày sneaker Nike",
			"Túi xách Gucci",
			"Sách kỹ năng mềm",
			"Đồ ăn nhanh",
			"Bánh kem sinh nhật",
			"Hoa tươi",
			"Thuốc men",
			"Mỹ phẩm Lancôme",
			"Đồ chơi trẻ em",
			"Văn phòng phẩm",
			"Thực phẩm organic",
			"Đồ điện tử",
			"Phụ kiện xe máy",
			"Đồ gia dụng",
		},
	}
}

// Receiver is the synthetic recipient data attached to a new order.
type Receiver struct {
	Name   string
	Phone  string
	Age    int
	Goods  string
	Weight float64
}

// ReceiverGenerator fabricates receivers. It is safe for concurrent use;
// draws from the shared rng are serialized.
type ReceiverGenerator struct {
	tables ReceiverTables

	mu  sync.Mutex
	rng *rand.Rand
}

// NewReceiverGenerator falls back to the default tables for any empty
// vocabulary; a nil rng uses a randomly seeded source.
func NewReceiverGenerator(tables ReceiverTables, rng *rand.Rand) *ReceiverGenerator {
	def := DefaultReceiverTables()
	if len(tables.LastNames) == 0 {
		tables.LastNames = def.LastNames
	}
	if len(tables.FirstNames) == 0 {
		tables.FirstNames = def.FirstNames
	}
	if len(tables.PhonePrefixes) == 0 {
		tables.PhonePrefixes = def.PhonePrefixes
	}
	if len(tables.Goods) == 0 {
		tables.Goods = def.Goods
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &ReceiverGenerator{tables: tables, rng: rng}
}

func (g *ReceiverGenerator) Generate() Receiver {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Receiver{
		Name:   g.name(),
		Phone:  g.phone(),
		Age:    g.age(),
		Goods:  g.pick(g.tables.Goods),
		Weight: g.weight(),
	}
}

// Name returns "<last> <first>".
func (g *ReceiverGenerator) Name() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.name()
}

// Phone returns a mobile prefix followed by seven random digits.
func (g *ReceiverGenerator) Phone() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phone()
}

func (g *ReceiverGenerator) Age() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.age()
}

// Weight returns kilograms in [0.5, 20.0] with one decimal.
func (g *ReceiverGenerator) Weight() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.weight()
}

func (g *ReceiverGenerator) name() string {
	return g.pick(g.tables.LastNames) + " " + g.pick(g.tables.FirstNames)
}

func (g *ReceiverGenerator) phone() string {
	var b strings.Builder
	b.WriteString(g.pick(g.tables.PhonePrefixes))
	for i := 0; i < 7; i++ {
		b.WriteByte(byte('0' + g.rng.IntN(10)))
	}
	return b.String()
}

func (g *ReceiverGenerator) age() int {
	return domain.MinReceiverAge + g.rng.IntN(domain.MaxReceiverAge-domain.MinReceiverAge+1)
}

func (g *ReceiverGenerator) weight() float64 {
	raw := domain.MinWeightKg + g.rng.Float64()*(domain.MaxWeightKg-domain.MinWeightKg)
	w, _ := decimal.NewFromFloat(raw).Round(1).Float64()
	return w
}

func (g *ReceiverGenerator) pick(values []string) string {
	return values[g.rng.IntN(len(values))]
}
