// Package config loads request files.
//
// A request file is YAML describing one session:
//
//	uri: https://api.example.com/search
//	method: POST
//	query:
//	  q: go modules
//	  page: 2
//	url_encode: true
//	headers:
//	  - "Accept: application/json"
//	body: "a=1&b=2"
//	timeout: 10s
//	ssl_verify_peer: true
//	options:
//	  max_redirs: 5
//	  user_agent: oneshot/1.0
//
// Query parameters and options keep the order they are written in.
// Option values are decoded into the type their transport option expects.
package config
