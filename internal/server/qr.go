package server

import (
	"fmt"
	"net"
	"slices"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// Views are the browser pages served from the assets directory: the two
// broadcast graphics and one page per player.
var Views = []string{"fill", "key", "player1", "player2", "player3"}

const qrPNGSize = 256

// IsView reports whether name is a known view
func IsView(name string) bool {
	return slices.Contains(Views, name)
}

// ViewURL joins a base URL and a view name
func ViewURL(baseURL, view string) string {
	return strings.TrimRight(baseURL, "/") + "/" + view
}

// BaseURL returns the URL players on the local network use to reach the
// server. A configured public URL wins over the detected address.
func BaseURL(settings ServerSettings) string {
	if settings.PublicURL != "" {
		return strings.TrimRight(settings.PublicURL, "/")
	}
	host := settings.Address
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = LocalIP()
	}
	return fmt.Sprintf("http://%s:%d", host, settings.Port)
}

// LocalIP returns the address of the interface used for outbound traffic,
// or localhost when there is none. Nothing is sent.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "localhost"
	}
	defer func() { _ = conn.Close() }()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "localhost"
}

// QRCodePNG encodes content as a PNG image
func QRCodePNG(content string) ([]byte, error) {
	return qrcode.Encode(content, qrcode.Medium, qrPNGSize)
}

// QRCodeTerminal renders content as a QR code using half-block characters,
// two modules per character row.
func QRCodeTerminal(content string) (string, error) {
	q, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", err
	}
	bitmap := q.Bitmap()

	var b strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bottom := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bottom:
				b.WriteRune('█')
			case top:
				b.WriteRune('▀')
			case bottom:
				b.WriteRune('▄')
			default:
				b.WriteRune(' ')
			}
		}
		b.WriteByte('\n')
	}
	return b.String(), nil
}
