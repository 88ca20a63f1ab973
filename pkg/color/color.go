package color

import (
	"fmt"
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ANSI palette indices
const (
	Red       = "1"
	Green     = "2"
	Yellow    = "3"
	Blue      = "4"
	Magenta   = "5"
	Cyan      = "6"
	Gray      = "8"
	BrightRed = "9"
)

var (
	detected = termenv.NewOutput(os.Stderr).EnvColorProfile()
	profile  = detected
)

// EnableColor switches colouring on (with the detected terminal profile) or off
func EnableColor(enable bool) {
	if enable {
		profile = detected
		return
	}
	profile = termenv.Ascii
}

// SetProfile forces a colour profile, e.g. for tests
func SetProfile(p termenv.Profile) {
	profile = p
}

func IsColorEnabled() bool {
	return profile != termenv.Ascii
}

func Colorize(color, text string) string {
	if !IsColorEnabled() {
		return text
	}
	return profile.String(text).Foreground(profile.Color(color)).String()
}

func RedText(text string) string {
	return Colorize(Red, text)
}

func BrightRedText(text string) string {
	return Colorize(BrightRed, text)
}

func GreenText(text string) string {
	return Colorize(Green, text)
}

func YellowText(text string) string {
	return Colorize(Yellow, text)
}

func CyanText(text string) string {
	return Colorize(Cyan, text)
}

func GrayText(text string) string {
	return Colorize(Gray, text)
}

func BoldText(text string) string {
	if !IsColorEnabled() {
		return text
	}
	return profile.String(text).Bold().String()
}

func Warning(message string) string {
	if !IsColorEnabled() {
		return message
	}
	return YellowText("Warning: ") + message
}

func Position(line, col int) string {
	pos := fmt.Sprintf("%d:%d", line, col)
	if !IsColorEnabled() {
		return pos
	}
	return CyanText(pos)
}

// Excerpt renders a source line with a caret under column col
func Excerpt(source string, col int) string {
	source = strings.TrimRight(source, "\r\n")
	if col < 1 {
		col = 1
	}
	indent := strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		return ' '
	}, prefix(source, col-1))
	return source + "\n" + indent + "^"
}

// prefix returns the first n runes of s, padded with spaces past its end
func prefix(s string, n int) string {
	runes := []rune(s)
	if n <= len(runes) {
		return string(runes[:n])
	}
	return s + strings.Repeat(" ", n-len(runes))
}

func ErrorWithPosition(line, col int, message, context string) string {
	if !IsColorEnabled() {
		if context == "" {
			return fmt.Sprintf("Error at %d:%d: %s", line, col, message)
		}
		return fmt.Sprintf("Error at %d:%d: %s\n%s", line, col, message, context)
	}

	out := fmt.Sprintf("%s at %s: %s",
		BrightRedText(BoldText("Error")),
		Position(line, col),
		message)
	if context != "" {
		out += "\n" + GrayText(context)
	}
	return out
}
