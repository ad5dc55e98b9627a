// SPDX-License-Identifier: GPL-2.0-or-later

package cvar

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	cvarArray  []*Cvar
	cvarByName = make(map[string]*Cvar)
)

type flag uint64

const (
	// cvar flags bitfield
	NONE    flag = 0
	ARCHIVE flag = 1
	ROM     flag = 1 << 6
)

type CallbackFunc func(cv *Cvar)

type Cvar struct {
	archive  bool
	rom      bool
	user     bool
	callback CallbackFunc
	name     string
	// stringValue is the truth, value the derived one
	stringValue  string
	value        float32
	defaultValue string
}

func All() []*Cvar {
	return cvarArray
}

func (cv *Cvar) Archive() bool {
	return cv.archive
}

func (cv *Cvar) UserDefined() bool {
	return cv.user
}

func (cv *Cvar) SetCallback(cb CallbackFunc) {
	cv.callback = cb
}

func (cv *Cvar) SetByString(s string) {
	if cv.rom {
		return
	}
	cv.stringValue = s
	pf, _ := strconv.ParseFloat(cv.stringValue, 32)
	cv.value = float32(pf)
	if cv.callback != nil {
		cv.callback(cv)
	}
}

func (cv *Cvar) Reset() {
	cv.SetByString(cv.defaultValue)
}

func (cv *Cvar) String() string {
	return cv.stringValue
}

func (cv *Cvar) Default() string {
	return cv.defaultValue
}

func (cv *Cvar) Name() string {
	return cv.name
}

func (cv *Cvar) Value() float32 {
	return cv.value
}

func (cv *Cvar) Int() int {
	return int(cv.value)
}

func (cv *Cvar) SetValue(value float32) {
	if float32(int(value)) == value {
		v := strconv.FormatInt(int64(value), 10)
		cv.SetByString(v)
	} else {
		v := strconv.FormatFloat(float64(value), 'f', -1, 32)
		cv.SetByString(v)
	}
}

func (cv *Cvar) Toggle() {
	if cv.String() == "1" {
		cv.SetByString("0")
	} else {
		cv.SetByString("1")
	}
}

func (cv *Cvar) Bool() bool {
	return cv.stringValue != "0"
}

func Get(name string) (*Cvar, bool) {
	cv, ok := cvarByName[name]
	return cv, ok
}

func create(name, value string) *Cvar {
	cv := &Cvar{name: name, defaultValue: value}
	cv.SetByString(value)
	cvarArray = append(cvarArray, cv)
	cvarByName[name] = cv
	return cv
}

func Register(name, value string, flags flag) (*Cvar, error) {
	if _, ok := cvarByName[name]; ok {
		return nil, errors.Errorf("Can't register variable %s, already defined", name)
	}

	cv := create(name, value)

	if flags&ARCHIVE != 0 {
		cv.archive = true
	}
	if flags&ROM != 0 {
		cv.rom = true
	}

	return cv, nil
}

func MustRegister(n, v string, flag flag) *Cvar {
	cv, err := Register(n, v, flag)
	if err != nil {
		panic(err)
	}
	return cv
}

// Set assigns value to the named cvar. Unknown names create a user defined
// cvar like the set console command does.
func Set(name, value string) {
	if cv, ok := cvarByName[name]; ok {
		cv.SetByString(value)
		return
	}
	cv := create(name, value)
	cv.user = true
	slog.Debug("created user cvar", slog.String("name", name))
}

// Execute runs a "name [value]" line. With only a name it returns the
// current value.
func Execute(line string) (string, error) {
	args := strings.Fields(line)
	if len(args) == 0 {
		return "", errors.New("empty cvar line")
	}
	cv, ok := Get(args[0])
	if !ok {
		return "", errors.Errorf("unknown cvar %q", args[0])
	}
	if len(args) == 1 {
		return cv.String(), nil
	}
	cv.SetByString(args[1])
	return cv.String(), nil
}

func ResetAll() {
	for _, cv := range All() {
		cv.Reset()
	}
}

// Sorted returns all cvars ordered by name.
func Sorted() []*Cvar {
	out := slices.Clone(cvarArray)
	slices.SortFunc(out, func(a, b *Cvar) int { return strings.Compare(a.name, b.name) })
	return out
}
