package engine

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Path - индексы от корня документа до узла. Пустой путь - корень.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, v := range p {
		parts[i] = strconv.Itoa(v)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (p Path) Clone() Path {
	if p == nil {
		return Path{}
	}
	return slices.Clone(p)
}

func (p Path) Equal(o Path) bool {
	return slices.Equal(p, o)
}

// Compare сравнивает пути по порядку документа. Предок считается равным потомку.
func (p Path) Compare(o Path) int {
	n := min(len(p), len(o))
	for i := range n {
		if p[i] < o[i] {
			return -1
		}
		if p[i] > o[i] {
			return 1
		}
	}
	return 0
}

func (p Path) IsBefore(o Path) bool { return p.Compare(o) == -1 }
func (p Path) IsAfter(o Path) bool  { return p.Compare(o) == 1 }

// IsAncestor - p строгий предок o
func (p Path) IsAncestor(o Path) bool {
	return len(p) < len(o) && p.Compare(o) == 0
}

// IsCommon - p предок o или равен ему
func (p Path) IsCommon(o Path) bool {
	return len(p) <= len(o) && p.Compare(o) == 0
}

func (p Path) IsParent(o Path) bool {
	return len(p)+1 == len(o) && p.Compare(o) == 0
}

func (p Path) IsSibling(o Path) bool {
	if len(p) != len(o) || len(p) == 0 {
		return false
	}
	return p.Parent().Equal(o.Parent()) && !p.Equal(o)
}

// EndsBefore - p заканчивается раньше o на уровне p
func (p Path) EndsBefore(o Path) bool {
	if len(p) == 0 {
		return false
	}
	i := len(p) - 1
	if len(o) <= i {
		return false
	}
	return slices.Equal(p[:i], o[:i]) && p[i] < o[i]
}

// EndsAfter - p заканчивается позже o на уровне p
func (p Path) EndsAfter(o Path) bool {
	if len(p) == 0 {
		return false
	}
	i := len(p) - 1
	if len(o) <= i {
		return false
	}
	return slices.Equal(p[:i], o[:i]) && p[i] > o[i]
}

func (p Path) Parent() Path {
	if len(p) == 0 {
		panic(fmt.Sprintf("engine: cannot get parent of root path %s", p))
	}
	return p[: len(p)-1 : len(p)-1]
}

func (p Path) Child(i int) Path {
	res := make(Path, len(p)+1)
	copy(res, p)
	res[len(p)] = i
	return res
}

func (p Path) Last() int {
	return p[len(p)-1]
}

func (p Path) Next() Path {
	if len(p) == 0 {
		panic("engine: cannot get next of root path")
	}
	res := p.Clone()
	res[len(res)-1]++
	return res
}

func (p Path) HasPrevious() bool {
	return len(p) > 0 && p[len(p)-1] > 0
}

func (p Path) Previous() Path {
	if !p.HasPrevious() {
		panic(fmt.Sprintf("engine: path %s has no previous sibling", p))
	}
	res := p.Clone()
	res[len(res)-1]--
	return res
}

// Levels возвращает все префиксы пути от корня до самого пути включительно
func (p Path) Levels() []Path {
	res := make([]Path, 0, len(p)+1)
	for i := 0; i <= len(p); i++ {
		res = append(res, p[:i:i])
	}
	return res
}

// Common - общий предок двух путей
func Common(a, b Path) Path {
	res := Path{}
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			break
		}
		res = append(res, a[i])
	}
	return res
}
