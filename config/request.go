package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adamwoolhether/oneshot/ordered"
	"github.com/adamwoolhether/oneshot/session"
	"github.com/adamwoolhether/oneshot/transport"
)

// Request is a request file: everything a session needs before it runs.
type Request struct {
	URI           string   `yaml:"uri" validate:"required,url"`
	Query         Query    `yaml:"query"`
	URLEncode     bool     `yaml:"url_encode"`
	UseCache      bool     `yaml:"use_cache"`
	Method        string   `yaml:"method" validate:"omitempty,method"`
	Headers       []string `yaml:"headers" validate:"dive,contains=:"`
	Body          string   `yaml:"body"`
	Timeout       Duration `yaml:"timeout" validate:"gte=0"`
	SSLVerifyHost *bool    `yaml:"ssl_verify_host"`
	SSLVerifyPeer *bool    `yaml:"ssl_verify_peer"`
	Cert          string   `yaml:"cert" validate:"omitempty,file"`
	Options       Options  `yaml:"options"`
}

// Load reads and validates the request file at path.
func Load(path string) (*Request, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening request file: %w", err)
	}
	defer f.Close()

	req, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return req, nil
}

// Parse decodes and validates a request from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Request, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var req Request
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty request file")
		}
		return nil, fmt.Errorf("decoding request: %w", err)
	}

	if err := req.Validate(); err != nil {
		return nil, err
	}

	return &req, nil
}

// Validate checks the request's field constraints. Failures are returned
// as FieldErrors.
func (r *Request) Validate() error {
	return Validate(r)
}

// Apply writes the request onto s and configures it. s must be fresh.
func (r *Request) Apply(s *session.Session) error {
	if r.Method != "" {
		m, err := session.ParseMethod(r.Method)
		if err != nil {
			return err
		}
		if err := s.SetMethod(m); err != nil {
			return fmt.Errorf("setting method: %w", err)
		}
	}

	steps := []step{
		{"headers", func() error { return s.SetHeaders(r.Headers) }},
		{"body", func() error { return s.SetPostFields(r.Body) }},
		{"timeout", func() error { return s.SetTimeout(time.Duration(r.Timeout)) }},
		{"custom options", func() error { return s.SetCustomOptions(r.Options.Map()) }},
	}
	if r.SSLVerifyHost != nil {
		steps = append(steps, step{"ssl verify host", func() error { return s.SetSSLVerifyHost(*r.SSLVerifyHost) }})
	}
	if r.SSLVerifyPeer != nil {
		steps = append(steps, step{"ssl verify peer", func() error { return s.SetSSLVerifyPeer(*r.SSLVerifyPeer) }})
	}
	if r.Cert != "" {
		steps = append(steps, step{"cert", func() error { return s.SetCert(r.Cert) }})
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("setting %s: %w", step.name, err)
		}
	}

	if err := s.Configure(r.URI, r.ConfigureOptions()...); err != nil {
		return fmt.Errorf("configuring session: %w", err)
	}

	return nil
}

type step struct {
	name string
	fn   func() error
}

// ConfigureOptions translates the query and flag fields of r.
func (r *Request) ConfigureOptions() []session.ConfigureOption {
	var opts []session.ConfigureOption
	if r.Query.Len() > 0 {
		opts = append(opts, session.WithQuery(r.Query.Map()))
	}
	if r.URLEncode {
		opts = append(opts, session.WithURLEncoding())
	}
	if r.UseCache {
		opts = append(opts, session.WithCache())
	}

	return opts
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)

	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Query is an ordered mapping of query parameter names to values.
type Query struct {
	m *ordered.Map[string, string]
}

// NewQuery builds a Query from pairs.
func NewQuery(pairs ...ordered.Pair[string, string]) Query {
	return Query{m: ordered.New(pairs...)}
}

func (q Query) Len() int                          { return q.m.Len() }
func (q Query) Map() *ordered.Map[string, string] { return q.m.Clone() }

// Set adds or replaces a parameter. A new name goes last.
func (q *Query) Set(name, value string) {
	if q.m == nil {
		q.m = ordered.New[string, string]()
	}
	q.m.Set(name, value)
}

func (q *Query) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: query must be a mapping", node.Line)
	}

	q.m = ordered.New[string, string]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: query value for %q must be a scalar", val.Line, key.Value)
		}
		q.m.Set(key.Value, val.Value)
	}

	return nil
}

func (q Query) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range q.m.All() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v},
		)
	}

	return node, nil
}

// Options is an ordered mapping of transport options to typed values.
type Options struct {
	m *ordered.Map[transport.Option, any]
}

func (o Options) Len() int { return o.m.Len() }

func (o Options) Map() *ordered.Map[transport.Option, any] { return o.m.Clone() }

// Set adds or replaces an option. value is not checked until the session
// applies it.
func (o *Options) Set(opt transport.Option, value any) {
	if o.m == nil {
		o.m = ordered.New[transport.Option, any]()
	}
	o.m.Set(opt, value)
}

func (o *Options) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: options must be a mapping", node.Line)
	}

	o.m = ordered.New[transport.Option, any]()
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]

		opt, err := transport.ParseOption(key.Value)
		if err != nil {
			return fmt.Errorf("line %d: %w", key.Line, err)
		}

		value, err := decodeOption(opt, val)
		if err != nil {
			return fmt.Errorf("line %d: option %s: %w", val.Line, opt, err)
		}
		o.m.Set(opt, value)
	}

	return nil
}

func decodeOption(opt transport.Option, node *yaml.Node) (any, error) {
	if opt.Kind() == transport.KindStrings {
		var lines []string
		if node.Kind == yaml.ScalarNode {
			lines = []string{node.Value}
		} else if err := node.Decode(&lines); err != nil {
			return nil, err
		}
		return lines, nil
	}

	if node.Kind != yaml.ScalarNode {
		return nil, fmt.Errorf("%w: %s wants a scalar", transport.ErrInvalidOptionValue, opt.Kind())
	}

	return transport.ParseValue(opt, node.Value)
}
