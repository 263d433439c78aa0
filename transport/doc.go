// Package transport performs single network transfers on behalf of a
// session.
//
// # Handles
//
// A [Transport] hands out one [Handle] per transfer. Options are applied
// with [Handle.SetOption], the transfer runs once with [Handle.Perform] and
// the outcome is read back with [Handle.Info]:
//
//	c, err := transport.New(transport.WithThrottle(10, 5))
//	h, err := c.Open("https://api.example.com/v1/resource")
//	defer h.Close()
//
//	_ = h.SetOption(transport.OptHeader, true)
//	_ = h.SetOption(transport.OptReturnTransfer, true)
//	raw, err := h.Perform(ctx)
//	info := h.Info()
//	header, body := raw[:info.HeaderSize], raw[info.HeaderSize:]
//
// # Protocols
//
// http and https run on [net/http]. ftp and ftps (implicit TLS) run on
// [github.com/jlaffaye/ftp]: a path ending in "/" lists names, DELETE
// removes the file, POST and PUT upload the post fields and everything
// else retrieves the file.
//
// # Errors
//
// A failed transfer is returned from Perform as a [*TransferError] whose
// message follows curl's wording. The handle still reports whatever
// [Info] it gathered before the failure.
package transport
