// Package content содержит чистые функции обработки элементов лент:
// фильтр позитивных новостей, очистку описаний, поиск картинок и выбор заглушки.
package content
