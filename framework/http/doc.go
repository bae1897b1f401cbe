// Package http provides request and response helpers for the resolver API.
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	var body struct {
//	    Service string `json:"service"`
//	}
//	if err := req.Bind(&body); err != nil { ... }
//
//	svc := req.Query("service")
//	ok  := req.Has("service")
//	id  := req.RouteParam("name") // chi route parameter
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.JSON(200, data)          // raw JSON with status
//	res.Success(data)            // 200 {"data": ...}
//	res.BadRequest("bad type")   // 400 {"message": "bad type"}
//	res.NotFound()               // 404 {"message": "Not found."}
//	res.Unavailable()            // 503 {"message": "Service unavailable."}
//	res.ServerError()            // 500 {"message": "Server Error."}
//	res.ValidationError(errs)    // 422 {"message": "msg", "errors": {"field": ["msg"]}}
package http
