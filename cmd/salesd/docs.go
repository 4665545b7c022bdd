package main

// General API documentation for swaggo. Generate with `swag init -g cmd/salesd/docs.go`.
//
// @title           salesd API
// @version         1.0
// @description     Daily sales prediction (XGBoost) and 7-day revenue forecast (Prophet) service.
//
// @contact.name   salesd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
