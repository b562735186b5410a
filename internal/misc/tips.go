package misc

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"

	log "github.com/sirupsen/logrus"
)

//go:embed tips.csv
var defaultTipsCsv string

var ErrNoTips = errors.New("no tips")

type Tip struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type TipsManager struct {
	Tips           []*Tip
	CategoriesTips map[string][]*Tip
}

func NewDefaultTipsManager() (*TipsManager, error) {
	return NewTipsManager(csv.NewReader(strings.NewReader(defaultTipsCsv)))
}

func NewTipsManager(tipsCsvReader *csv.Reader) (*TipsManager, error) {
	tm := &TipsManager{}
	tm.CategoriesTips = make(map[string][]*Tip)

	tipsCsvReader.Comma = ';'
	for {
		record, err := tipsCsvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if len(record) != 2 {
			return nil, fmt.Errorf("record [%s] does not have 2 elements", record)
		}

		// TIP;CATEGORY
		tip := &Tip{
			Text:     record[0],
			Category: record[1],
		}
		tm.Tips = append(tm.Tips, tip)
		tm.CategoriesTips[tip.Category] = append(tm.CategoriesTips[tip.Category], tip)
	}

	log.Debugf("tips CSV read %d tips", len(tm.Tips))

	return tm, nil
}

// RandomTip picks from the category, or from all tips when category is empty.
func (tm *TipsManager) RandomTip(category string) (*Tip, error) {
	tips := tm.Tips
	if category != "" {
		tips = tm.CategoriesTips[category]
	}
	if len(tips) == 0 {
		return nil, ErrNoTips
	}
	return tips[rand.Intn(len(tips))], nil
}
