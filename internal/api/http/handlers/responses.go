package handlers

import (
	"github.com/spec-kit/camp-registration/internal/api/dto"
	"github.com/spec-kit/camp-registration/internal/domain"
	"github.com/spec-kit/camp-registration/internal/service"
)

func userResponse(user *domain.User) dto.UserResponse {
	return dto.UserResponse{
		ID:               user.ID,
		Name:             user.Name,
		PlayaName:        user.PlayaName,
		Email:            user.Email,
		Phone:            user.Phone,
		EmergencyContact: user.EmergencyContact,
		Role:             user.Role,
		Status:           user.Status,
		CreatedAt:        user.CreatedAt,
	}
}

func registrationResponse(reg *domain.Registration) dto.RegistrationResponse {
	return dto.RegistrationResponse{
		ID:            reg.ID,
		UserID:        reg.UserID,
		Year:          reg.Year,
		Status:        reg.Status,
		ArrivalDate:   reg.ArrivalDate,
		DepartureDate: reg.DepartureDate,
		Notes:         reg.Notes,
		CreatedAt:     reg.CreatedAt,
		UpdatedAt:     reg.UpdatedAt,
		CancelledAt:   reg.CancelledAt,
	}
}

func registrationDetailResponse(detail *service.RegistrationDetail) dto.RegistrationDetailResponse {
	resp := dto.RegistrationDetailResponse{
		RegistrationResponse: registrationResponse(&detail.Registration),
		ShiftSignups:         make([]dto.ShiftSignupResponse, 0, len(detail.ShiftSignups)),
		CampingSignups:       make([]dto.CampingSignupResponse, 0, len(detail.CampingSignups)),
		Payments:             make([]dto.PaymentResponse, 0, len(detail.Payments)),
	}
	for _, signup := range detail.ShiftSignups {
		resp.ShiftSignups = append(resp.ShiftSignups, dto.ShiftSignupResponse{
			ID:        signup.ID,
			ShiftID:   signup.ShiftID,
			CreatedAt: signup.CreatedAt,
		})
	}
	for _, signup := range detail.CampingSignups {
		resp.CampingSignups = append(resp.CampingSignups, dto.CampingSignupResponse{
			ID:              signup.ID,
			CampingOptionID: signup.CampingOptionID,
			CreatedAt:       signup.CreatedAt,
		})
	}
	for i := range detail.Payments {
		resp.Payments = append(resp.Payments, paymentResponse(&detail.Payments[i]))
	}
	return resp
}

func paymentResponse(payment *domain.Payment) dto.PaymentResponse {
	return dto.PaymentResponse{
		ID:             payment.ID,
		RegistrationID: payment.RegistrationID,
		AmountCents:    payment.AmountCents,
		RefundedCents:  payment.RefundedCents,
		Currency:       payment.Currency,
		Provider:       payment.Provider,
		Status:         payment.Status,
		CreatedAt:      payment.CreatedAt,
		UpdatedAt:      payment.UpdatedAt,
	}
}

func jobResponse(job *domain.Job) dto.JobResponse {
	return dto.JobResponse{
		ID:             job.ID,
		CategoryID:     job.CategoryID,
		Name:           job.Name,
		Location:       job.Location,
		StaffOnly:      job.StaffOnly,
		AlwaysRequired: job.AlwaysRequired,
	}
}

func shiftResponse(shift *domain.Shift, signupCount int) dto.ShiftResponse {
	return dto.ShiftResponse{
		ID:               shift.ID,
		JobID:            shift.JobID,
		Name:             shift.Name,
		Day:              shift.Day,
		StartTime:        shift.StartTime,
		EndTime:          shift.EndTime,
		MaxRegistrations: shift.MaxRegistrations,
		SignupCount:      signupCount,
	}
}

func campingOptionResponse(option *domain.CampingOption) dto.CampingOptionResponse {
	return dto.CampingOptionResponse{
		ID:                   option.ID,
		Name:                 option.Name,
		Description:          option.Description,
		Enabled:              option.Enabled,
		WorkShiftsRequired:   option.WorkShiftsRequired,
		ParticipantDuesCents: option.ParticipantDuesCents,
		StaffDuesCents:       option.StaffDuesCents,
		MaxSignups:           option.MaxSignups,
		CreatedAt:            option.CreatedAt,
	}
}

func auditEntryResponse(entry *domain.AdminAudit) dto.AuditEntryResponse {
	return dto.AuditEntryResponse{
		ID:            entry.ID,
		AdminUserID:   entry.AdminUserID,
		Action:        entry.Action,
		TargetType:    entry.TargetType,
		TargetID:      entry.TargetID,
		OldValue:      entry.OldValue,
		NewValue:      entry.NewValue,
		Reason:        entry.Reason,
		TransactionID: entry.TransactionID,
		CreatedAt:     entry.CreatedAt,
	}
}
