package lifecycle

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jhoicas/setsco-serial-api/internal/domain"
	"github.com/jhoicas/setsco-serial-api/internal/domain/entity"
)

// MaxRangeSize límite de seriales generados en una sola llamada.
const MaxRangeSize = 10000

var serialPattern = regexp.MustCompile(`^([A-Za-z]+)(\d+)$`)

func parseName(name string) (prefix string, digits string, ok bool) {
	m := serialPattern.FindStringSubmatch(name)
	if len(m) != 3 {
		return "", "", false
	}
	return m[1], m[2], true
}

// ExpandRange genera los nombres entre start y end (inclusive) conservando prefijo y relleno de ceros.
// Ejemplo: AS00001..AS00003 → AS00001, AS00002, AS00003.
func ExpandRange(start, end string) ([]string, error) {
	sp, sd, ok1 := parseName(strings.TrimSpace(start))
	ep, ed, ok2 := parseName(strings.TrimSpace(end))
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("%w: formato de serial esperado como AS00001", domain.ErrInvalidInput)
	}
	if sp != ep {
		return nil, fmt.Errorf("%w: inicio y fin deben tener el mismo prefijo", domain.ErrInvalidInput)
	}
	from, err := strconv.Atoi(sd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	to, err := strconv.Atoi(ed)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if from > to {
		return nil, fmt.Errorf("%w: inicio debe ser menor o igual al fin", domain.ErrInvalidInput)
	}
	if to-from+1 > MaxRangeSize {
		return nil, fmt.Errorf("%w: rango supera %d seriales", domain.ErrInvalidInput, MaxRangeSize)
	}
	width := len(sd)
	names := make([]string, 0, to-from+1)
	for n := from; n <= to; n++ {
		names = append(names, fmt.Sprintf("%s%0*d", sp, width, n))
	}
	return names, nil
}

// CompareNames orden natural: mismo prefijo compara la parte numérica; si no, orden de texto.
func CompareNames(a, b string) int {
	if a == b {
		return 0
	}
	ap, ad, ok1 := parseName(a)
	bp, bd, ok2 := parseName(b)
	if !ok1 || !ok2 || ap != bp {
		return strings.Compare(a, b)
	}
	an, err1 := strconv.Atoi(ad)
	bn, err2 := strconv.Atoi(bd)
	if err1 != nil || err2 != nil {
		return strings.Compare(a, b)
	}
	switch {
	case an < bn:
		return -1
	case an > bn:
		return 1
	}
	return strings.Compare(a, b)
}

// SortByName ordena seriales por nombre natural; empates por Seq.
func SortByName(units []*entity.SerialUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		if c := CompareNames(units[i].Name, units[j].Name); c != 0 {
			return c < 0
		}
		return units[i].Seq < units[j].Seq
	})
}

// SortBySeq ordena seriales por orden de creación (orden de bloqueo).
func SortBySeq(units []*entity.SerialUnit) {
	sort.SliceStable(units, func(i, j int) bool { return units[i].Seq < units[j].Seq })
}
