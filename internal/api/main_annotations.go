// @title           promptpad API
// @version         1.0
// @description     Render prompt templates, encode conversations and talk to the configured model.
// @BasePath        /api/v1
package api
