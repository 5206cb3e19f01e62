package cli

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestMain(m *testing.M) {
	color.NoColor = true
	os.Exit(m.Run())
}

func TestPrinter_Table(t *testing.T) {
	var out bytes.Buffer
	p := Printer{W: &out}

	p.Table([]string{"ID", "NAME"}, [][]string{{"1", "alpha"}, {"22", "b"}})

	lines := strings.Split(strings.TrimRight(out.String(), "\n"), "\n")
	assert.Equal(t, []string{
		"ID  NAME",
		"1   alpha",
		"22  b",
	}, lines)
}

func TestPrinter_Fields(t *testing.T) {
	var out bytes.Buffer
	p := Printer{W: &out}

	p.Fields("user", "root", "remaining quota", "12", "dangling")

	assert.Equal(t, "user:             root\nremaining quota:  12\n", out.String())
}

func TestPrinter_Error(t *testing.T) {
	var out bytes.Buffer
	Printer{W: &out}.Error(errors.New("boom"))
	assert.Equal(t, "error: boom\n", out.String())
}

func TestPrice(t *testing.T) {
	assert.Equal(t, "¥9.90", Price(990))
	assert.Equal(t, "¥0.00", Price(0))
	assert.Equal(t, "¥1200.05", Price(120005))
}

func TestDeref(t *testing.T) {
	s := "x"
	empty := ""
	assert.Equal(t, "x", Deref(&s))
	assert.Equal(t, "-", Deref(&empty))
	assert.Equal(t, "-", Deref(nil))
}

func TestPageFooter(t *testing.T) {
	assert.Equal(t, "page 1 of 1, 0 total", PageFooter(1, 20, 0))
	assert.Equal(t, "page 2 of 3, 41 total", PageFooter(2, 20, 41))
	assert.Equal(t, "page 1 of 5, 5 total", PageFooter(1, 0, 5))
}
