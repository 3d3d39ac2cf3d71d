package sanitizer

import (
	"strings"

	"articles_api/internal/models"

	"github.com/microcosm-cc/bluemonday"
)

// Только угловые скобки: повторное экранирование не должно менять строку.
var titleEscaper = strings.NewReplacer("<", "&lt;", ">", "&gt;")

// Sanitizer вычищает исполняемую разметку из полей статьи.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// New создаёт Sanitizer на базе UGC-политики bluemonday:
// форматирование (strong, em, img с безопасным src и т.п.) сохраняется,
// script и обработчики событий удаляются.
func New() *Sanitizer {
	return &Sanitizer{policy: bluemonday.UGCPolicy()}
}

// SanitizeTitle экранирует любую разметку в заголовке.
func (s *Sanitizer) SanitizeTitle(title string) string {
	return titleEscaper.Replace(title)
}

// SanitizeContent оставляет безопасное форматирование и нейтрализует скрипты.
func (s *Sanitizer) SanitizeContent(content string) string {
	return s.policy.Sanitize(content)
}

// Article возвращает копию статьи с очищенными title и content.
func (s *Sanitizer) Article(a models.Article) models.Article {
	a.Title = s.SanitizeTitle(a.Title)
	a.Content = s.SanitizeContent(a.Content)
	return a
}

// Articles применяет Article ко всем элементам; результат не бывает nil.
func (s *Sanitizer) Articles(list []models.Article) []models.Article {
	out := make([]models.Article, 0, len(list))
	for _, a := range list {
		out = append(out, s.Article(a))
	}
	return out
}
