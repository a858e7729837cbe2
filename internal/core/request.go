package core

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Request is one IPC line such as "tiles:move 2 40 80". Domain is the text
// before the colon, Verb the first word after it and Rest everything after
// the verb.
type Request struct {
	Domain string
	Verb   string
	Rest   string
}

// Response is written back as a single JSON line.
type Response struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func okResponse(data any) Response {
	return Response{OK: true, Data: data}
}

func errResponse(format string, args ...any) Response {
	return Response{OK: false, Error: fmt.Sprintf(format, args...)}
}

const subscribeCommand = "subscribe"

func ParseRequest(line string) (Request, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Request{}, fmt.Errorf("empty request")
	}
	if line == subscribeCommand {
		return Request{Domain: subscribeCommand}, nil
	}

	domain, body, ok := strings.Cut(line, ":")
	if !ok {
		return Request{}, fmt.Errorf("malformed request %q (want domain:command)", line)
	}
	domain = strings.TrimSpace(domain)
	body = strings.TrimSpace(body)
	if domain == "" || body == "" {
		return Request{}, fmt.Errorf("malformed request %q (want domain:command)", line)
	}

	verb, rest, _ := strings.Cut(body, " ")
	return Request{Domain: domain, Verb: verb, Rest: strings.TrimSpace(rest)}, nil
}

func (r Request) String() string {
	if r.Domain == subscribeCommand {
		return subscribeCommand
	}
	if r.Rest == "" {
		return r.Domain + ":" + r.Verb
	}
	return r.Domain + ":" + r.Verb + " " + r.Rest
}

// Ints parses Rest as exactly n integers.
func (r Request) Ints(n int) ([]int, error) {
	fields := strings.Fields(r.Rest)
	if len(fields) != n {
		return nil, fmt.Errorf("%s:%s takes %d numeric arguments, got %d", r.Domain, r.Verb, n, len(fields))
	}
	out := make([]int, n)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("argument %d of %s:%s is not a number: %q", i+1, r.Domain, r.Verb, f)
		}
		out[i] = v
	}
	return out, nil
}

// IntsThenText parses n leading integers and returns the remaining text,
// which may contain spaces.
func (r Request) IntsThenText(n int) ([]int, string, error) {
	rest := r.Rest
	out := make([]int, n)
	for i := 0; i < n; i++ {
		field, tail, _ := strings.Cut(strings.TrimLeft(rest, " "), " ")
		v, err := strconv.Atoi(field)
		if err != nil {
			return nil, "", fmt.Errorf("argument %d of %s:%s is not a number: %q", i+1, r.Domain, r.Verb, field)
		}
		out[i] = v
		rest = tail
	}
	text := strings.TrimSpace(rest)
	if text == "" {
		return nil, "", fmt.Errorf("%s:%s is missing its text argument", r.Domain, r.Verb)
	}
	return out, text, nil
}

// IndexAndPoint parses Rest as a row index followed by an x and y position.
func (r Request) IndexAndPoint() (int, float64, float64, error) {
	fields := strings.Fields(r.Rest)
	if len(fields) != 3 {
		return 0, 0, 0, fmt.Errorf("%s:%s takes an index and a position, got %d arguments", r.Domain, r.Verb, len(fields))
	}
	i, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, 0, fmt.Errorf("argument 1 of %s:%s is not a number: %q", r.Domain, r.Verb, fields[0])
	}
	x, y, err := r.point(fields[1], fields[2], 2)
	if err != nil {
		return 0, 0, 0, err
	}
	return i, x, y, nil
}

// PointThenText parses a leading x and y position and returns the remaining
// text, which may contain spaces.
func (r Request) PointThenText() (float64, float64, string, error) {
	xs, tail, _ := strings.Cut(strings.TrimLeft(r.Rest, " "), " ")
	ys, tail, _ := strings.Cut(strings.TrimLeft(tail, " "), " ")
	x, y, err := r.point(xs, ys, 1)
	if err != nil {
		return 0, 0, "", err
	}
	text := strings.TrimSpace(tail)
	if text == "" {
		return 0, 0, "", fmt.Errorf("%s:%s is missing its text argument", r.Domain, r.Verb)
	}
	return x, y, text, nil
}

func (r Request) point(xs, ys string, first int) (float64, float64, error) {
	var out [2]float64
	for i, f := range []string{xs, ys} {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, 0, fmt.Errorf("argument %d of %s:%s is not a coordinate: %q", first+i, r.Domain, r.Verb, f)
		}
		out[i] = v
	}
	return out[0], out[1], nil
}
