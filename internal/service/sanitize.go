package service

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// stripPolicy 去除一切 HTML 标签，只保留文本内容。
// bluemonday 的 Policy 并发安全，包级共享一份即可。
var stripPolicy = bluemonday.StrictPolicy()

// Sanitize 清洗用户输入：去除 HTML 标签、trim 首尾空白。
// 残留文本保持实体转义形态 (如 < -> &lt;)，不做还原，
// 否则转义过的输入会被还原成活的标签存进库里。
// 对任意输入满足 Sanitize(Sanitize(s)) == Sanitize(s)。
// 参与者名字和消息正文在入库前都要经过这里。
func Sanitize(s string) string {
	return strings.TrimSpace(stripPolicy.Sanitize(s))
}
