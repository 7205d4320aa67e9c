package types

// HtmlContent 页面上一组元素的 outerHTML
type HtmlContent struct {
	Url             string
	ContentSelector string
	Content         []string
}

func (h *HtmlContent) Len() int {
	if h == nil {
		return 0
	}
	return len(h.Content)
}
