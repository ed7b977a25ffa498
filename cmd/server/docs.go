package main

//go:generate swag init -g cmd/server/main.go -o docs

// @title           Feedback Insights API
// @version         0.1.0
// @description     Purchase and customer feedback ingestion with sentiment scoring and zero-shot labeling.
// @host            localhost:8000
// @BasePath        /
// @schemes         http
