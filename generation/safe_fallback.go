package generation

import "sync/atomic"

// safeFallbackResponses are canned Korean-language responses returned only
// after every model in the fallback chain has failed or emptied. They are
// rotated by a simple counter so repeated outages do not look identical in
// logs, but the content carries no model-generated claim.
var safeFallbackResponses = []string{
	"죄송합니다. 현재 요청을 처리할 수 없습니다. 잠시 후 다시 시도해 주세요.",
	"일시적인 오류로 답변을 생성하지 못했습니다. 잠시 후 다시 시도해 주세요.",
}

var fallbackCounter uint64

// SafeFallbackResponse returns the next canned response in rotation. It is
// the last-resort path, used only when no configured model produced usable
// output.
func SafeFallbackResponse() string {
	n := atomic.AddUint64(&fallbackCounter, 1) - 1
	return safeFallbackResponses[n%uint64(len(safeFallbackResponses))]
}
