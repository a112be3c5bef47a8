package form

import (
	"errors"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Field names one input of a form.
type Field string

// Errors maps a field to its current validation message. A field without an
// entry is valid.
type Errors map[Field]string

// Set records msg for f. An empty msg clears the field.
func (e *Errors) Set(f Field, msg string) {
	if msg == "" {
		e.Clear(f)
		return
	}
	if *e == nil {
		*e = Errors{}
	}
	(*e)[f] = msg
}

// Clear removes the error of f only.
func (e Errors) Clear(f Field) {
	delete(e, f)
}

// Get returns the message for f, or "".
func (e Errors) Get(f Field) string {
	return e[f]
}

// Has reports whether f currently has an error.
func (e Errors) Has(f Field) bool {
	_, ok := e[f]
	return ok
}

// Empty reports whether no field has an error.
func (e Errors) Empty() bool {
	return len(e) == 0
}

// Fields returns the fields with errors in sorted order.
func (e Errors) Fields() []Field {
	out := make([]Field, 0, len(e))
	for f := range e {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (e Errors) Clone() Errors {
	if e == nil {
		return nil
	}
	dup := make(Errors, len(e))
	for k, v := range e {
		dup[k] = v
	}
	return dup
}

// Messages maps a field and a failed rule tag to the text shown to the
// viewer. The empty tag is the field's fallback message.
type Messages map[Field]map[string]string

func (m Messages) lookup(f Field, tag string) string {
	if byTag, ok := m[f]; ok {
		if msg, ok := byTag[tag]; ok {
			return msg
		}
		if msg, ok := byTag[""]; ok {
			return msg
		}
	}
	return "Invalid value"
}

// Validator runs struct tag rules and reports failures per field. Struct fields
// are named by their `form` tag.
type Validator struct {
	v *validator.Validate
}

var durationPattern = regexp.MustCompile(`^(\d+):(\d{2})$`)

// MaxClockMinutes is the largest MM part SplitClock accepts, so that the
// total in seconds fits a 32-bit int.
const MaxClockMinutes = (math.MaxInt32 - 59) / 60

// New returns a Validator with the project's custom rules registered:
//
//	notblank        value is not empty after trimming whitespace
//	mmss            value has the MM:SS shape
//	clocksecs       an MM:SS value has SS below 60 and MM of at most MaxClockMinutes
//	emaildomain=d   the address ends with "@d"
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	mustRegister(v, "mmss", func(fl validator.FieldLevel) bool {
		return IsClock(fl.Field().String())
	})
	mustRegister(v, "clocksecs", func(fl validator.FieldLevel) bool {
		_, secs, ok := SplitClock(fl.Field().String())
		return ok && secs < 60
	})
	mustRegister(v, "emaildomain", func(fl validator.FieldLevel) bool {
		addr := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		return strings.HasSuffix(addr, "@"+strings.ToLower(fl.Param()))
	})
	return &Validator{v: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic("register " + tag + ": " + err.Error())
	}
}

// Struct validates every tagged field of s.
func (v *Validator) Struct(s any, msgs Messages) Errors {
	return v.collect(v.v.Struct(s), msgs, nil)
}

// Fields validates s and keeps only the results for fields.
func (v *Validator) Fields(s any, msgs Messages, fields ...Field) Errors {
	keep := make(map[Field]struct{}, len(fields))
	for _, f := range fields {
		keep[f] = struct{}{}
	}
	return v.collect(v.v.Struct(s), msgs, keep)
}

func (v *Validator) collect(err error, msgs Messages, keep map[Field]struct{}) Errors {
	var out Errors
	if err == nil {
		return out
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out.Set("form", err.Error())
		return out
	}
	for _, fe := range verrs {
		f := Field(fe.Field())
		if keep != nil {
			if _, ok := keep[f]; !ok {
				continue
			}
		}
		if out.Has(f) {
			continue
		}
		out.Set(f, msgs.lookup(f, fe.Tag()))
	}
	return out
}

// IsClock reports whether value has the MM:SS shape, whatever the size of
// its parts.
func IsClock(value string) bool {
	return durationPattern.MatchString(value)
}

// SplitClock parses an MM:SS value into its parts. Minutes may have any number
// of digits up to MaxClockMinutes; seconds must have exactly two.
func SplitClock(value string) (minutes, seconds int, ok bool) {
	m := durationPattern.FindStringSubmatch(value)
	if m == nil {
		return 0, 0, false
	}
	minutes, err := strconv.Atoi(m[1])
	if err != nil || minutes > MaxClockMinutes {
		return 0, 0, false
	}
	seconds, err = strconv.Atoi(m[2])
	if err != nil {
		return 0, 0, false
	}
	return minutes, seconds, true
}
