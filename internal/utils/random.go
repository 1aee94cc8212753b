package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/mozillazg/go-pinyin"
	"github.com/worksync-dev/worksync/backend/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

var commonSurnames = []string{
	"王", "李", "张", "刘", "陈", "杨", "赵", "黄", "周", "吴",
	"徐", "孙", "胡", "朱", "高", "林", "何", "郭", "马", "罗",
}
var commonNameCharacters = []string{
	"伟", "强", "芳", "敏", "静", "丽", "刚", "杰", "娟", "勇",
	"艳", "涛", "明", "军", "磊", "洋", "勇", "霞", "飞", "玲",
	"超", "华", "平", "辉", "梅", "鑫", "龙", "鹏", "玉", "斌",
	"庆", "建", "丹", "彬", "凤", "旭", "宁", "乐", "成", "欣",
}

var positions = []string{
	"Software Engineer", "QA Engineer", "Product Manager", "Designer",
	"Accountant", "HR Specialist", "Sales Representative", "Support Engineer",
}

func GenerateRandomChineseName() string {
	surname := commonSurnames[rand.Intn(len(commonSurnames))]
	nameLength := rand.Intn(2) + 1
	name := ""

	for i := 0; i < nameLength; i++ {
		name += commonNameCharacters[rand.Intn(len(commonNameCharacters))]
	}
	return surname + name
}

var digits = "0123456789"

// GenerateEmailLocalPart 由姓名的拼音加上随机数字组成邮箱前缀
func GenerateEmailLocalPart(chineseName string) string {
	pinyinArray := pinyin.LazyConvert(chineseName, nil)
	local := strings.Join(pinyinArray, ".")

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local
}

func FormatEmployeeID(n int) string {
	return fmt.Sprintf("EMP%03d", n)
}

func GenerateRandomUser(password string, emailDomainName string, employeeNumber int) (*domain.User, error) {
	name := GenerateRandomChineseName()
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	position := positions[rand.Intn(len(positions))]
	salary := float64(rand.Intn(20)+5) * 1000
	employeeID := FormatEmployeeID(employeeNumber)

	user := &domain.User{
		Name:         name,
		Email:        domain.NormalizeEmail(GenerateEmailLocalPart(name) + "@" + emailDomainName),
		PasswordHash: string(passwordHash),
		Role:         domain.RoleEmployee,
		Position:     &position,
		Salary:       &salary,
		EmployeeID:   &employeeID,
	}

	return user, nil
}

var attendanceStatuses = []domain.AttendanceStatus{
	domain.AttendancePresent,
	domain.AttendancePresent,
	domain.AttendancePresent,
	domain.AttendanceHalfDay,
	domain.AttendanceAbsent,
}

// GenerateRandomAttendanceStatus 中出勤的概率更高
func GenerateRandomAttendanceStatus() domain.AttendanceStatus {
	return attendanceStatuses[rand.Intn(len(attendanceStatuses))]
}

var leaveReasons = []string{"Sick", "Family matters", "Vacation", "Medical appointment", "Personal"}

func GenerateRandomLeaveReason() string {
	return leaveReasons[rand.Intn(len(leaveReasons))]
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	random_password := make([]rune, length)
	for i := range random_password {
		random_password[i] = letters[rand.Intn(len(letters))]
	}
	return string(random_password)
}
