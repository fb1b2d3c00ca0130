// Package fortune implements the temple-style lot drawing feature. Lots are
// a fixed local table, drawn uniformly at random.
package fortune

import (
	"math/rand"
	"sync"
	"time"
)

// Lot is one fortune stick: a grade, a four-line poem, and its reading.
type Lot struct {
	Level   string
	Poem    string
	Meaning string
}

var lots = []Lot{
	{
		Level:   "大吉",
		Poem:    "春風得意馬蹄疾,一日看盡長安花。萬事俱備東風至,此時不搏待何時。",
		Meaning: "時運正旺,想做的事放手去做,貴人就在身邊。",
	},
	{
		Level:   "大吉",
		Poem:    "久旱逢甘霖降下,枯木逢春又發芽。莫道前路無知己,天下誰人不識君。",
		Meaning: "困境已過,轉機已到,把握眼前的機會。",
	},
	{
		Level:   "中吉",
		Poem:    "雲開月出正分明,不須進退問前程。婚姻皆由天註定,和合清吉萬事成。",
		Meaning: "事情會往好的方向走,不必多慮,順其自然即可。",
	},
	{
		Level:   "中吉",
		Poem:    "舟行千里遇順風,財帛自有貴人通。家門和順身康健,秋來更勝舊時紅。",
		Meaning: "整體平順偏旺,財運與健康都有照應,秋後更佳。",
	},
	{
		Level:   "小吉",
		Poem:    "小舟初出水雲間,風細浪平好往還。寸進尺行休急躁,穩中求勝自開顏。",
		Meaning: "小有收穫,穩紮穩打比衝刺更有利。",
	},
	{
		Level:   "小吉",
		Poem:    "籬外黃花分外香,莫嫌籬內少春光。眼前福分雖然小,積少成多日月長。",
		Meaning: "眼前的好處雖小,累積起來相當可觀,別輕忽。",
	},
	{
		Level:   "吉",
		Poem:    "平生作善天加佑,心正何愁路不平。守己安分隨緣過,自有福星照戶庭。",
		Meaning: "守住本分就有福報,不必強求,心安即是吉。",
	},
	{
		Level:   "吉",
		Poem:    "月到中秋分外明,遠行之人盼歸程。家書抵得萬金重,靜候佳音莫心驚。",
		Meaning: "等待中的消息會是好消息,耐心一點。",
	},
	{
		Level:   "末吉",
		Poem:    "霧鎖山頭路未明,行人切莫趕前程。待得日出雲霧散,方見青山分外清。",
		Meaning: "局勢未明,先觀望,等情況清楚再行動。",
	},
	{
		Level:   "末吉",
		Poem:    "燈花結蕊喜還無,半是陰晴半是晡。謀事先難而後易,過了險灘是坦途。",
		Meaning: "先苦後甘,起頭不順是正常的,撐過去就好。",
	},
	{
		Level:   "凶",
		Poem:    "逆水行舟用力撐,一篙鬆勁退千尋。此時只宜守舊業,莫聽旁人說短長。",
		Meaning: "近期不宜冒進或聽信他人慫恿,守成為上。",
	},
	{
		Level:   "凶",
		Poem:    "風急天高浪打船,出門千里路三千。不如歸守家中坐,免得他鄉惹禍愆。",
		Meaning: "諸事不順,避開重大決定與遠行,靜待時機。",
	},
}

// Drawer draws lots. The random source is injectable for tests.
type Drawer struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewDrawer creates a Drawer seeded from the clock.
func NewDrawer() *Drawer {
	return &Drawer{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewDrawerWithSource creates a Drawer with a fixed random source.
func NewDrawerWithSource(src rand.Source) *Drawer {
	return &Drawer{rng: rand.New(src)}
}

// Draw returns one lot chosen uniformly from the table.
func (d *Drawer) Draw() Lot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return lots[d.rng.Intn(len(lots))]
}

// Count reports the size of the lot table.
func Count() int { return len(lots) }
