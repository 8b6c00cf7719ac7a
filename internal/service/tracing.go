package service

import "go.opentelemetry.io/otel"

var tracer = otel.Tracer("github.com/vaibhavvatsbhartiya/storefront/internal/service")
