// internal/domain/geo/table.go
package geo

import (
	"sort"

	"github.com/your-org/storefront-bff/internal/domain/address"
)

// Location is a named place with a known centre coordinate
type Location struct {
	Name       string
	Coordinate Coordinate
}

// Table is an exact-match lookup of place names to coordinates. Keys are
// compared after address normalization, so "Long Biên" and " long biên "
// hit the same entry.
type Table struct {
	entries map[string]Coordinate
}

// NewTable builds a lookup table from locations. Later entries win on
// duplicate names.
func NewTable(locations []Location) *Table {
	t := &Table{entries: make(map[string]Coordinate, len(locations))}
	for _, l := range locations {
		key := address.Normalize(l.Name)
		if key == "" {
			continue
		}
		t.entries[key] = l.Coordinate
	}
	return t
}

// DefaultTable returns the built-in table
func DefaultTable() *Table {
	return NewTable(BuiltinLocations())
}

// Lookup returns the coordinate stored for name
func (t *Table) Lookup(name string) (Coordinate, bool) {
	key := address.Normalize(name)
	if key == "" {
		return Coordinate{}, false
	}
	c, ok := t.entries[key]
	return c, ok
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Locations lists the entries sorted by name
func (t *Table) Locations() []Location {
	out := make([]Location, 0, len(t.entries))
	for name, c := range t.entries {
		out = append(out, Location{Name: name, Coordinate: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BuiltinLocations returns the Hanoi districts and provincial centres the
// storefront has always shipped with.
func BuiltinLocations() []Location {
	return []Location{
		// Hà Nội
		{"Hà Nội", Coordinate{21.0285, 105.8542}},
		{"Ba Đình", Coordinate{21.0341, 105.8372}},
		{"Hoàn Kiếm", Coordinate{21.0288, 105.8525}},
		{"Tây Hồ", Coordinate{21.0703, 105.8188}},
		{"Long Biên", Coordinate{21.0549, 105.8885}},
		{"Cầu Giấy", Coordinate{21.0362, 105.7906}},
		{"Đống Đa", Coordinate{21.0181, 105.8296}},
		{"Hai Bà Trưng", Coordinate{21.0058, 105.8574}},
		{"Hoàng Mai", Coordinate{20.9745, 105.8638}},
		{"Thanh Xuân", Coordinate{20.9936, 105.8142}},
		{"Nam Từ Liêm", Coordinate{21.0124, 105.7620}},
		{"Bắc Từ Liêm", Coordinate{21.0697, 105.7600}},
		{"Hà Đông", Coordinate{20.9714, 105.7788}},
		{"Sơn Tây", Coordinate{21.1383, 105.5055}},
		{"Đông Anh", Coordinate{21.1369, 105.8497}},
		{"Gia Lâm", Coordinate{21.0285, 105.9480}},
		{"Sóc Sơn", Coordinate{21.2575, 105.8483}},
		{"Thanh Trì", Coordinate{20.9430, 105.8470}},
		{"Hoài Đức", Coordinate{21.0245, 105.7020}},
		{"Mê Linh", Coordinate{21.1830, 105.7200}},
		{"Thường Tín", Coordinate{20.8715, 105.8630}},
		{"Đan Phượng", Coordinate{21.0890, 105.6700}},
		{"Chương Mỹ", Coordinate{20.9180, 105.7000}},
		{"Quốc Oai", Coordinate{20.9920, 105.6400}},

		// Centrally governed cities
		{"Hồ Chí Minh", Coordinate{10.8231, 106.6297}},
		{"Đà Nẵng", Coordinate{16.0544, 108.2022}},
		{"Hải Phòng", Coordinate{20.8449, 106.6881}},
		{"Cần Thơ", Coordinate{10.0452, 105.7469}},

		// Red River Delta and the north
		{"Bắc Ninh", Coordinate{21.1861, 106.0763}},
		{"Hưng Yên", Coordinate{20.6464, 106.0511}},
		{"Vĩnh Phúc", Coordinate{21.3609, 105.5474}},
		{"Hải Dương", Coordinate{20.9373, 106.3146}},
		{"Hà Nam", Coordinate{20.5835, 105.9230}},
		{"Nam Định", Coordinate{20.4388, 106.1621}},
		{"Thái Bình", Coordinate{20.4463, 106.3366}},
		{"Ninh Bình", Coordinate{20.2506, 105.9745}},
		{"Thái Nguyên", Coordinate{21.5942, 105.8482}},
		{"Bắc Giang", Coordinate{21.2731, 106.1946}},
		{"Phú Thọ", Coordinate{21.3227, 105.4019}},
		{"Quảng Ninh", Coordinate{21.0064, 107.2925}},
		{"Lạng Sơn", Coordinate{21.8537, 106.7610}},
		{"Cao Bằng", Coordinate{22.6657, 106.2579}},
		{"Hà Giang", Coordinate{22.8233, 104.9836}},
		{"Tuyên Quang", Coordinate{21.8233, 105.2140}},
		{"Lào Cai", Coordinate{22.4856, 103.9707}},
		{"Yên Bái", Coordinate{21.7229, 104.9113}},
		{"Bắc Kạn", Coordinate{22.1470, 105.8348}},
		{"Sơn La", Coordinate{21.3270, 103.9144}},
		{"Điện Biên", Coordinate{21.3860, 103.0230}},
		{"Lai Châu", Coordinate{22.3964, 103.4582}},
		{"Hòa Bình", Coordinate{20.8171, 105.3376}},

		// North and south central coast
		{"Thanh Hóa", Coordinate{19.8067, 105.7852}},
		{"Nghệ An", Coordinate{18.6790, 105.6813}},
		{"Hà Tĩnh", Coordinate{18.3559, 105.8877}},
		{"Quảng Bình", Coordinate{17.4689, 106.6223}},
		{"Quảng Trị", Coordinate{16.7503, 107.1856}},
		{"Thừa Thiên Huế", Coordinate{16.4637, 107.5909}},
		{"Huế", Coordinate{16.4637, 107.5909}},
		{"Quảng Nam", Coordinate{15.5394, 108.0191}},
		{"Quảng Ngãi", Coordinate{15.1214, 108.8044}},
		{"Bình Định", Coordinate{13.7820, 109.2197}},
		{"Phú Yên", Coordinate{13.0882, 109.0929}},
		{"Khánh Hòa", Coordinate{12.2388, 109.1967}},
		{"Ninh Thuận", Coordinate{11.5646, 108.9886}},
		{"Bình Thuận", Coordinate{10.9289, 108.1021}},

		// Central highlands
		{"Kon Tum", Coordinate{14.3497, 108.0005}},
		{"Gia Lai", Coordinate{13.9833, 108.0000}},
		{"Đắk Lắk", Coordinate{12.6667, 108.0500}},
		{"Đắk Nông", Coordinate{12.0042, 107.6907}},
		{"Lâm Đồng", Coordinate{11.9404, 108.4583}},

		// Southeast
		{"Bình Phước", Coordinate{11.7512, 106.7235}},
		{"Tây Ninh", Coordinate{11.3352, 106.1099}},
		{"Bình Dương", Coordinate{10.9804, 106.6519}},
		{"Đồng Nai", Coordinate{10.9574, 106.8426}},
		{"Bà Rịa - Vũng Tàu", Coordinate{10.4114, 107.1362}},

		// Mekong Delta
		{"Long An", Coordinate{10.5354, 106.4137}},
		{"Tiền Giang", Coordinate{10.3600, 106.3600}},
		{"Bến Tre", Coordinate{10.2434, 106.3756}},
		{"Trà Vinh", Coordinate{9.9347, 106.3453}},
		{"Vĩnh Long", Coordinate{10.2537, 105.9722}},
		{"Đồng Tháp", Coordinate{10.4938, 105.6882}},
		{"An Giang", Coordinate{10.5216, 105.1259}},
		{"Kiên Giang", Coordinate{10.0125, 105.0809}},
		{"Hậu Giang", Coordinate{9.7579, 105.6413}},
		{"Sóc Trăng", Coordinate{9.6025, 105.9739}},
		{"Bạc Liêu", Coordinate{9.2940, 105.7216}},
		{"Cà Mau", Coordinate{9.1768, 105.1524}},
	}
}
