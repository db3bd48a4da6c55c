package callbacks

import (
	"strconv"

	tele "gopkg.in/telebot.v4"
)

// PayloadInt parses callback payload as int. Item and list buttons carry
// zero-based positions in their payload.
func PayloadInt(c tele.Context) (int, error) {
	return strconv.Atoi(CallbackPayload(c))
}
