// Package geo resolves free-text place mentions to coordinates. It layers
// curated lookup tables (Taiwan city aliases, outlying islands, foreign-city
// country hints) in front of a remote geocoder, because the general geocoder
// under-resolves exactly the places Taiwanese users ask about most.
package geo

import "strings"

// canonicalCity maps the variants of a Taiwan city mention (traditional and
// simplified characters, plus the English name itself) to the canonical
// English name used for provider queries. Longer variants come first so that
// "新北" wins over the "台北" contained in "新北市旁邊的台北" style inputs and
// "new taipei" wins over "taipei".
type canonicalCity struct {
	name     string
	variants []string
}

var taiwanCities = []canonicalCity{
	{name: "New Taipei", variants: []string{"新北", "new taipei"}},
	{name: "Taipei", variants: []string{"台北", "臺北", "taipei"}},
	{name: "Taichung", variants: []string{"台中", "臺中", "taichung"}},
	{name: "Tainan", variants: []string{"台南", "臺南", "tainan"}},
	{name: "Kaohsiung", variants: []string{"高雄", "kaohsiung"}},
	{name: "Taoyuan", variants: []string{"桃園", "桃园", "taoyuan"}},
	{name: "Hsinchu", variants: []string{"新竹", "hsinchu"}},
	{name: "Keelung", variants: []string{"基隆", "keelung"}},
	{name: "Chiayi", variants: []string{"嘉義", "嘉义", "chiayi"}},
	{name: "Yilan", variants: []string{"宜蘭", "宜兰", "yilan"}},
	{name: "Hualien", variants: []string{"花蓮", "花莲", "hualien"}},
	{name: "Taitung", variants: []string{"台東", "臺東", "taitung"}},
	{name: "Pingtung", variants: []string{"屏東", "屏东", "pingtung"}},
	{name: "Nantou", variants: []string{"南投", "nantou"}},
	{name: "Yunlin", variants: []string{"雲林", "云林", "yunlin"}},
	{name: "Miaoli", variants: []string{"苗栗", "miaoli"}},
	{name: "Changhua", variants: []string{"彰化", "changhua"}},
}

// Island is an outlying island with fixed coordinates. The remote geocoder
// resolves these poorly, so they bypass it entirely.
type Island struct {
	Name string
	Lat  float64
	Lon  float64
}

var islands = []struct {
	island  Island
	aliases []string
}{
	{Island{"Penghu", 23.5712, 119.5793}, []string{"澎湖", "penghu", "pescadores"}},
	{Island{"Kinmen", 24.4493, 118.3767}, []string{"金門", "金门", "kinmen", "quemoy"}},
	{Island{"Matsu", 26.1608, 119.9489}, []string{"馬祖", "马祖", "matsu"}},
	{Island{"Green Island", 22.6610, 121.4903}, []string{"綠島", "绿岛", "green island", "ludao", "lyudao"}},
	{Island{"Lanyu", 22.0456, 121.5572}, []string{"蘭嶼", "兰屿", "lanyu", "orchid island"}},
	{Island{"Liuqiu", 22.3448, 120.3714}, []string{"小琉球", "琉球嶼", "liuqiu", "xiaoliuqiu", "lambai island"}},
}

// countryHints disambiguates city names common to multiple countries by
// pinning the query to a country code.
var countryHints = map[string]string{
	"東京":  "Tokyo,JP",
	"东京":  "Tokyo,JP",
	"大阪":  "Osaka,JP",
	"京都":  "Kyoto,JP",
	"福岡":  "Fukuoka,JP",
	"福冈":  "Fukuoka,JP",
	"名古屋": "Nagoya,JP",
	"札幌":  "Sapporo,JP",
	"沖繩":  "Okinawa,JP",
	"冲绳":  "Okinawa,JP",
	"首爾":  "Seoul,KR",
	"首尔":  "Seoul,KR",
	"釜山":  "Busan,KR",
	"曼谷":  "Bangkok,TH",
	"新加坡": "Singapore,SG",
	"香港":  "Hong Kong,HK",
}

// CanonicalTaiwanCity snaps a cleaned city mention to its canonical English
// name when any known variant is contained in it.
func CanonicalTaiwanCity(s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, city := range taiwanCities {
		for _, variant := range city.variants {
			if strings.Contains(lower, variant) {
				return city.name, true
			}
		}
	}
	return "", false
}

// IslandByName looks up an outlying island by any known alias.
func IslandByName(s string) (Island, bool) {
	lower := strings.ToLower(strings.TrimSpace(s))
	if lower == "" {
		return Island{}, false
	}
	for _, entry := range islands {
		for _, alias := range entry.aliases {
			if lower == alias {
				return entry.island, true
			}
		}
	}
	return Island{}, false
}

// CountryHint returns the disambiguated "City,CC" query for city names that
// collide across countries.
func CountryHint(s string) (string, bool) {
	hint, ok := countryHints[strings.TrimSpace(s)]
	return hint, ok
}
