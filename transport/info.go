package transport

import "time"

// Info is the diagnostic metadata of one transfer, modelled after
// curl_getinfo. Durations are measured from the start of Perform.
type Info struct {
	URL               string
	ContentType       string
	HTTPCode          int
	HeaderSize        int
	RequestSize       int
	RedirectCount     int
	TotalTime         time.Duration
	NameLookupTime    time.Duration
	ConnectTime       time.Duration
	AppConnectTime    time.Duration
	PreTransferTime   time.Duration
	StartTransferTime time.Duration
	SizeDownload      int64
	SizeUpload        int64
	PrimaryIP         string
	PrimaryPort       int
	Scheme            string
	HTTPVersion       string
}

// Map returns the metadata keyed the way curl_getinfo names it.
// Times are reported in seconds.
func (i Info) Map() map[string]any {
	return map[string]any{
		"url":                i.URL,
		"content_type":       i.ContentType,
		"http_code":          i.HTTPCode,
		"header_size":        i.HeaderSize,
		"request_size":       i.RequestSize,
		"redirect_count":     i.RedirectCount,
		"total_time":         i.TotalTime.Seconds(),
		"namelookup_time":    i.NameLookupTime.Seconds(),
		"connect_time":       i.ConnectTime.Seconds(),
		"appconnect_time":    i.AppConnectTime.Seconds(),
		"pretransfer_time":   i.PreTransferTime.Seconds(),
		"starttransfer_time": i.StartTransferTime.Seconds(),
		"size_download":      i.SizeDownload,
		"size_upload":        i.SizeUpload,
		"primary_ip":         i.PrimaryIP,
		"primary_port":       i.PrimaryPort,
		"scheme":             i.Scheme,
		"http_version":       i.HTTPVersion,
	}
}
