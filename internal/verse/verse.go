// Package verse serves random scripture verses from a fixed local table.
package verse

import (
	"math/rand"
	"sync"
	"time"
)

// Verse is one scripture quote with its reference.
type Verse struct {
	Ref  string
	Text string
}

var verses = []Verse{
	{Ref: "詩篇 23:1", Text: "耶和華是我的牧者,我必不致缺乏。"},
	{Ref: "腓立比書 4:13", Text: "我靠著那加給我力量的,凡事都能做。"},
	{Ref: "約翰福音 3:16", Text: "神愛世人,甚至將他的獨生子賜給他們,叫一切信他的,不致滅亡,反得永生。"},
	{Ref: "箴言 3:5-6", Text: "你要專心仰賴耶和華,不可倚靠自己的聰明,在你一切所行的事上都要認定他,他必指引你的路。"},
	{Ref: "以賽亞書 40:31", Text: "但那等候耶和華的必從新得力。他們必如鷹展翅上騰;他們奔跑卻不困倦,行走卻不疲乏。"},
	{Ref: "馬太福音 11:28", Text: "凡勞苦擔重擔的人可以到我這裡來,我就使你們得安息。"},
	{Ref: "詩篇 46:1", Text: "神是我們的避難所,是我們的力量,是我們在患難中隨時的幫助。"},
	{Ref: "羅馬書 8:28", Text: "我們曉得萬事都互相效力,叫愛神的人得益處。"},
	{Ref: "耶利米書 29:11", Text: "我知道我向你們所懷的意念是賜平安的意念,不是降災禍的意念,要叫你們末後有指望。"},
	{Ref: "詩篇 118:24", Text: "這是耶和華所定的日子,我們在其中要高興歡喜。"},
	{Ref: "哥林多前書 13:4", Text: "愛是恆久忍耐,又有恩慈;愛是不嫉妒,愛是不自誇,不張狂。"},
	{Ref: "約書亞記 1:9", Text: "你當剛強壯膽!不要懼怕,也不要驚惶,因為你無論往哪裡去,耶和華你的神必與你同在。"},
}

// Picker draws verses. The random source is injectable for tests.
type Picker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewPicker creates a Picker seeded from the clock.
func NewPicker() *Picker {
	return &Picker{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// NewPickerWithSource creates a Picker with a fixed random source.
func NewPickerWithSource(src rand.Source) *Picker {
	return &Picker{rng: rand.New(src)}
}

// Pick returns one verse chosen uniformly from the table.
func (p *Picker) Pick() Verse {
	p.mu.Lock()
	defer p.mu.Unlock()
	return verses[p.rng.Intn(len(verses))]
}

// Count reports the size of the verse table.
func Count() int { return len(verses) }
