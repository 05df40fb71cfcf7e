package http

var ParseDateParam = parseDateParam
