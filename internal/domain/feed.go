package domain

import "time"

// Enclosure описывает вложение элемента RSS-ленты (<enclosure>) с объявленным MIME-типом.
type Enclosure struct {
	URL  string
	Type string
}

// Media описывает первый элемент media:content или media:thumbnail.
// Ленты отдают эти поля то одиночным объектом, то списком; парсер
// всегда приводит их к первому элементу.
type Media struct {
	URL    string
	Type   string
	Medium string
}

// RawItem представляет отдельную новость из RSS/Atom-ленты в нормализованном виде.
// Существует только в рамках одного цикла загрузки и не сохраняется как есть.
type RawItem struct {
	Title          string
	Description    string
	Content        string
	Link           string
	GUID           string
	Published      time.Time
	Enclosure      *Enclosure
	MediaContent   *Media
	MediaThumbnail *Media
	Custom         map[string]string
}

// Feed представляет полную ленту с метаданными и списком новостей.
type Feed struct {
	Title       string
	Link        string
	Description string
	Items       []RawItem
}

// FetchOutcome - результат загрузки одной ленты в цикле: либо элементы, либо причина сбоя.
type FetchOutcome struct {
	Name  string
	URL   string
	Items []RawItem
	Err   error
}
