package models

import "time"

// Article представляет одну запись таблицы articles.
type Article struct {
	ID            int       `json:"id"`
	Title         string    `json:"title"`
	Style         string    `json:"style"`
	Content       string    `json:"content"`
	DatePublished time.Time `json:"date_published"`
}

// Draft — тело запроса на создание статьи до присвоения id и даты публикации.
// Поля-указатели позволяют отличить отсутствующее поле от пустой строки.
type Draft struct {
	Title   *string `json:"title" validate:"required"`
	Style   *string `json:"style" validate:"required"`
	Content *string `json:"content" validate:"required"`
}

// Patch — частичное обновление; nil означает "не менять".
// Прочие ключи тела запроса игнорируются при декодировании.
type Patch struct {
	Title   *string `json:"title"`
	Style   *string `json:"style"`
	Content *string `json:"content"`
}

// Empty сообщает, что в патче нет ни одного обновляемого поля.
func (p Patch) Empty() bool {
	return p.Title == nil && p.Style == nil && p.Content == nil
}
