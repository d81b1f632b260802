package grpc

// proto.go describes card.v1.CardService by hand. Messages travel with the
// JSON codec registered in json_codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const cardServiceName = "card.v1.CardService"

// CardServiceServer is the server API for CardService.
type CardServiceServer interface {
	RequestNewCard(context.Context, *IssueCardRequest) (*CardOperationResponse, error)
	IssueCard(context.Context, *IssueCardRequest) (*CardOperationResponse, error)
	ActivateCard(context.Context, *CardIDRequest) (*CardOperationResponse, error)
	RequestBlockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error)
	BlockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error)
	RequestUnblockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error)
	UnblockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error)
	CancelCard(context.Context, *CardIDRequest) (*CardOperationResponse, error)
	GetCard(context.Context, *CardIDRequest) (*GetCardResponse, error)
	GetCardsByUser(context.Context, *GetCardsByUserRequest) (*ListCardsResponse, error)
	GetNonActiveCards(context.Context, *GetNonActiveCardsRequest) (*ListCardsResponse, error)
	DeleteCard(context.Context, *DeleteCardRequest) (*DeleteCardResponse, error)
	mustEmbedUnimplementedCardServiceServer()
}

// UnimplementedCardServiceServer provides forward-compatible default implementations.
type UnimplementedCardServiceServer struct{}

func (UnimplementedCardServiceServer) RequestNewCard(context.Context, *IssueCardRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RequestNewCard not implemented")
}
func (UnimplementedCardServiceServer) IssueCard(context.Context, *IssueCardRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method IssueCard not implemented")
}
func (UnimplementedCardServiceServer) ActivateCard(context.Context, *CardIDRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method ActivateCard not implemented")
}
func (UnimplementedCardServiceServer) RequestBlockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RequestBlockCard not implemented")
}
func (UnimplementedCardServiceServer) BlockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method BlockCard not implemented")
}
func (UnimplementedCardServiceServer) RequestUnblockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method RequestUnblockCard not implemented")
}
func (UnimplementedCardServiceServer) UnblockCard(context.Context, *CardIDRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method UnblockCard not implemented")
}
func (UnimplementedCardServiceServer) CancelCard(context.Context, *CardIDRequest) (*CardOperationResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method CancelCard not implemented")
}
func (UnimplementedCardServiceServer) GetCard(context.Context, *CardIDRequest) (*GetCardResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCard not implemented")
}
func (UnimplementedCardServiceServer) GetCardsByUser(context.Context, *GetCardsByUserRequest) (*ListCardsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetCardsByUser not implemented")
}
func (UnimplementedCardServiceServer) GetNonActiveCards(context.Context, *GetNonActiveCardsRequest) (*ListCardsResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetNonActiveCards not implemented")
}
func (UnimplementedCardServiceServer) DeleteCard(context.Context, *DeleteCardRequest) (*DeleteCardResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method DeleteCard not implemented")
}
func (UnimplementedCardServiceServer) mustEmbedUnimplementedCardServiceServer() {}

// RegisterCardServiceServer registers the CardServiceServer with the gRPC server.
func RegisterCardServiceServer(s grpclib.ServiceRegistrar, srv CardServiceServer) {
	s.RegisterService(&_CardService_serviceDesc, srv)
}

var _CardService_serviceDesc = grpclib.ServiceDesc{ //nolint:revive
	ServiceName: cardServiceName,
	HandlerType: (*CardServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "RequestNewCard", Handler: unaryHandler("RequestNewCard", CardServiceServer.RequestNewCard)},
		{MethodName: "IssueCard", Handler: unaryHandler("IssueCard", CardServiceServer.IssueCard)},
		{MethodName: "ActivateCard", Handler: unaryHandler("ActivateCard", CardServiceServer.ActivateCard)},
		{MethodName: "RequestBlockCard", Handler: unaryHandler("RequestBlockCard", CardServiceServer.RequestBlockCard)},
		{MethodName: "BlockCard", Handler: unaryHandler("BlockCard", CardServiceServer.BlockCard)},
		{MethodName: "RequestUnblockCard", Handler: unaryHandler("RequestUnblockCard", CardServiceServer.RequestUnblockCard)},
		{MethodName: "UnblockCard", Handler: unaryHandler("UnblockCard", CardServiceServer.UnblockCard)},
		{MethodName: "CancelCard", Handler: unaryHandler("CancelCard", CardServiceServer.CancelCard)},
		{MethodName: "GetCard", Handler: unaryHandler("GetCard", CardServiceServer.GetCard)},
		{MethodName: "GetCardsByUser", Handler: unaryHandler("GetCardsByUser", CardServiceServer.GetCardsByUser)},
		{MethodName: "GetNonActiveCards", Handler: unaryHandler("GetNonActiveCards", CardServiceServer.GetNonActiveCards)},
		{MethodName: "DeleteCard", Handler: unaryHandler("DeleteCard", CardServiceServer.DeleteCard)},
	},
	Streams:  []grpclib.StreamDesc{},
	Metadata: "card/v1/card.proto",
}

// unaryHandler adapts a typed CardServiceServer method to the generic
// grpc.MethodDesc handler signature.
func unaryHandler[Req, Resp any](
	method string,
	call func(CardServiceServer, context.Context, *Req) (*Resp, error),
) grpclib.MethodHandler {
	fullMethod := "/" + cardServiceName + "/" + method

	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CardServiceServer), ctx, in)
		}
		info := &grpclib.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(CardServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Proto-aligned request/response message types.

// IssueCardRequest represents the proto IssueCardRequest message.
// CreditLimit is a decimal string; empty means the configured default.
type IssueCardRequest struct {
	CardHolderName string `json:"card_holder_name"`
	UserID         string `json:"user_id"`
	CardType       string `json:"card_type"`
	CreditLimit    string `json:"credit_limit,omitempty"`
}

// CardIDRequest represents the proto CardIdRequest message.
type CardIDRequest struct {
	CardID string `json:"card_id"`
}

// GetCardsByUserRequest represents the proto GetCardsByUserRequest message.
type GetCardsByUserRequest struct {
	UserID string `json:"user_id"`
}

// GetNonActiveCardsRequest represents the proto GetNonActiveCardsRequest message.
type GetNonActiveCardsRequest struct{}

// DeleteCardRequest represents the proto DeleteCardRequest message.
type DeleteCardRequest struct {
	CardID string `json:"card_id"`
	Reason string `json:"reason"`
}

// CardMsg represents the proto Card message. The card number is masked.
type CardMsg struct {
	ID             string `json:"id"`
	CardNumber     string `json:"card_number"`
	LastFour       string `json:"last_four"`
	CardHolderName string `json:"card_holder_name"`
	UserID         string `json:"user_id"`
	CardType       string `json:"card_type"`
	Status         string `json:"status"`
	CreditLimit    string `json:"credit_limit,omitempty"`
	AvailableLimit string `json:"available_limit"`
	ExpiryDate     string `json:"expiry_date"`
	Version        int    `json:"version"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

// CardOperationResponse represents the proto CardOperationResponse message.
// Degraded is set when the change was stored but its event is still queued.
type CardOperationResponse struct {
	Card          *CardMsg `json:"card"`
	Message       string   `json:"message"`
	Degraded      bool     `json:"degraded"`
	DeliveryError string   `json:"delivery_error,omitempty"`
}

// GetCardResponse represents the proto GetCardResponse message.
type GetCardResponse struct {
	Card *CardMsg `json:"card"`
}

// ListCardsResponse represents the proto ListCardsResponse message.
type ListCardsResponse struct {
	Cards []*CardMsg `json:"cards"`
}

// DeleteCardResponse represents the proto DeleteCardResponse message.
type DeleteCardResponse struct {
	CardID  string `json:"card_id"`
	Deleted bool   `json:"deleted"`
}
