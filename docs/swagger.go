// Package docs Transit Favorites API.
//
// Сервис избранных мест (дом, работа) для транспортных сетей.
// Для каждой пары (вид, сеть) хранится не больше одного места.
//
// Основные возможности:
// - Чтение, запись и удаление избранного места в слоте
// - Подсчёт записей в слоте
// - Наблюдение за слотом через Server-Sent Events
//
//	Schemes: http, https
//	BasePath: /
//	Version: 1.0.0
//
//	Consumes:
//	- application/json
//
//	Produces:
//	- application/json
//	- text/event-stream
//
// swagger:meta
package docs
