package transport

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Option identifies a single transport setting applied through
// [Handle.SetOption]. The set mirrors the curl options a request
// client typically reaches for.
type Option int

const (
	OptURL Option = iota + 1
	OptFailOnError
	OptFollowLocation
	OptMaxRedirs
	OptReturnTransfer
	OptHeader
	OptSSLVerifyHost
	OptSSLVerifyPeer
	OptCAInfo
	OptHTTPHeader
	OptPost
	OptCustomRequest
	OptFreshConnect
	OptPostFields
	OptTimeout
	OptConnectTimeout
	OptUserAgent
	OptUserPwd
	OptProxy
)

// Kind describes the Go type an Option value must have.
type Kind int

const (
	KindBool Kind = iota + 1
	KindInt
	KindString
	KindStrings
	KindDuration
	KindHostVerification
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindStrings:
		return "[]string"
	case KindDuration:
		return "time.Duration"
	case KindHostVerification:
		return "transport.HostVerification"
	}

	return fmt.Sprintf("Kind(%d)", int(k))
}

type optionDef struct {
	name string
	kind Kind
}

var optionDefs = map[Option]optionDef{
	OptURL:            {"url", KindString},
	OptFailOnError:    {"fail_on_error", KindBool},
	OptFollowLocation: {"follow_location", KindBool},
	OptMaxRedirs:      {"max_redirs", KindInt},
	OptReturnTransfer: {"return_transfer", KindBool},
	OptHeader:         {"header", KindBool},
	OptSSLVerifyHost:  {"ssl_verify_host", KindHostVerification},
	OptSSLVerifyPeer:  {"ssl_verify_peer", KindBool},
	OptCAInfo:         {"ca_info", KindString},
	OptHTTPHeader:     {"http_header", KindStrings},
	OptPost:           {"post", KindBool},
	OptCustomRequest:  {"custom_request", KindString},
	OptFreshConnect:   {"fresh_connect", KindBool},
	OptPostFields:     {"post_fields", KindString},
	OptTimeout:        {"timeout", KindDuration},
	OptConnectTimeout: {"connect_timeout", KindDuration},
	OptUserAgent:      {"user_agent", KindString},
	OptUserPwd:        {"user_pwd", KindString},
	OptProxy:          {"proxy", KindString},
}

func (o Option) String() string {
	if def, ok := optionDefs[o]; ok {
		return def.name
	}

	return fmt.Sprintf("Option(%d)", int(o))
}

// Kind reports the value type o expects, or 0 for an unknown option.
func (o Option) Kind() Kind {
	return optionDefs[o].kind
}

// ParseOption resolves an option by its snake_case name, as used in
// request files and on the command line.
func ParseOption(name string) (Option, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for opt, def := range optionDefs {
		if def.name == name {
			return opt, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownOption, name)
}

// HostVerification selects how the server certificate's host name is checked.
// The numeric values match curl's CURLOPT_SSL_VERIFYHOST.
type HostVerification int

const (
	VerifyHostOff    HostVerification = 0
	VerifyHostStrict HostVerification = 2
)

func (h HostVerification) String() string {
	switch h {
	case VerifyHostOff:
		return "off"
	case VerifyHostStrict:
		return "strict"
	}

	return fmt.Sprintf("HostVerification(%d)", int(h))
}

// ParseHostVerification accepts "off"/"strict" or the curl numbers 0 and 2.
func ParseHostVerification(s string) (HostVerification, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "0", "false":
		return VerifyHostOff, nil
	case "strict", "2", "true":
		return VerifyHostStrict, nil
	}

	return 0, fmt.Errorf("%w: host verification %q", ErrInvalidOptionValue, s)
}

// ParseValue converts the text form of a value into the type opt expects.
// A KindStrings option receives s as its single element.
func ParseValue(opt Option, s string) (any, error) {
	kind := opt.Kind()

	var (
		value any
		err   error
	)
	switch kind {
	case KindBool:
		value, err = strconv.ParseBool(strings.TrimSpace(s))
	case KindInt:
		value, err = strconv.Atoi(strings.TrimSpace(s))
	case KindString:
		value = s
	case KindStrings:
		value = []string{s}
	case KindDuration:
		value, err = time.ParseDuration(strings.TrimSpace(s))
	case KindHostVerification:
		return ParseHostVerification(s)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownOption, opt)
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %s wants %s: %w", ErrInvalidOptionValue, opt, kind, err)
	}

	return value, nil
}

// checkValue confirms value has the type opt expects.
func checkValue(opt Option, value any) error {
	kind := opt.Kind()
	if kind == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownOption, opt)
	}

	var ok bool
	switch kind {
	case KindBool:
		_, ok = value.(bool)
	case KindInt:
		_, ok = value.(int)
	case KindString:
		_, ok = value.(string)
	case KindStrings:
		_, ok = value.([]string)
	case KindDuration:
		_, ok = value.(time.Duration)
	case KindHostVerification:
		var hv HostVerification
		hv, ok = value.(HostVerification)
		if ok && hv != VerifyHostOff && hv != VerifyHostStrict {
			ok = false
		}
	}

	if !ok {
		return fmt.Errorf("%w: %s wants %s, got %T", ErrInvalidOptionValue, opt, kind, value)
	}

	return nil
}
