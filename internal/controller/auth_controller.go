package controller

import (
	"tink_backend/internal/model"
	"tink_backend/pkg/apperror"
	"tink_backend/pkg/database"
	"tink_backend/pkg/utils/jwt"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	PhoneNumber string `json:"phone_number"`
	Role        string `json:"role"`
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func Register(c *fiber.Ctx) error {
	input := new(RegisterInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	if input.Email == "" || input.Password == "" || input.FirstName == "" {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Email, password and first name are required"))
	}

	var existingUser model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&existingUser).Error; err == nil {
		return apperror.Respond(c, apperror.New(apperror.CodeConflict, "Email already exists"))
	}

	role := model.RoleLandlord
	if input.Role == string(model.RoleManager) {
		role = model.RoleManager
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not hash password", err))
	}

	user := model.User{
		Email:       input.Email,
		Password:    string(hashedPassword),
		Role:        role,
		FirstName:   input.FirstName,
		LastName:    input.LastName,
		CompanyName: input.CompanyName,
		PhoneNumber: input.PhoneNumber,
		IsActive:    true,
	}

	if err := database.GetDB().Create(&user).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not create user", err))
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not generate token", err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Registration successful",
		"token":   token,
		"user":    user.GetPublicProfile(),
	})
}

func Login(c *fiber.Ctx) error {
	input := new(LoginInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	var user model.User
	if err := database.GetDB().Where("email = ?", input.Email).First(&user).Error; err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeUnauthorized, "Invalid credentials"))
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeUnauthorized, "Invalid credentials"))
	}

	if !user.IsActive {
		return apperror.Respond(c, apperror.New(apperror.CodeForbidden, "Account is disabled"))
	}

	token, err := jwt.GenerateToken(user.ID, user.Email, string(user.Role))
	if err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not generate token", err))
	}

	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   token,
		"user":    user.GetPublicProfile(),
	})
}

func GetMe(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "User not found"))
	}

	return c.JSON(user.GetPublicProfile())
}

type ProfileInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	CompanyName string `json:"company_name"`
	PhoneNumber string `json:"phone_number"`
}

func UpdateProfile(c *fiber.Ctx) error {
	claims := c.Locals("user").(*jwt.Claims)

	input := new(ProfileInput)
	if err := c.BodyParser(input); err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeValidation, "Invalid input"))
	}

	var user model.User
	if err := database.GetDB().First(&user, claims.UserID).Error; err != nil {
		return apperror.Respond(c, apperror.New(apperror.CodeNotFound, "User not found"))
	}

	updates := map[string]interface{}{
		"first_name":   input.FirstName,
		"last_name":    input.LastName,
		"company_name": input.CompanyName,
		"phone_number": input.PhoneNumber,
	}
	if err := database.GetDB().Model(&user).Updates(updates).Error; err != nil {
		return apperror.Respond(c, apperror.Wrap(apperror.CodeInternal, "Could not update profile", err))
	}

	return c.JSON(user.GetPublicProfile())
}
